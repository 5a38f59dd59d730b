package sql

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/relgen/compiler/gen"
)

// genPackage generates the per-table constant package ({table}/{table}.go).
// A single const block holds the table, column and relation names.
func genPackage(h gen.GeneratorHelper, t *gen.Type) *jen.File {
	f := h.NewFile(t.Package())

	f.Const().DefsFunc(func(defs *jen.Group) {
		defs.Commentf("Table holds the table name of the %s in the database.", t.Name)
		defs.Id("Table").Op("=").Lit(t.Table.Name)

		for _, c := range t.Table.Columns {
			defs.Commentf("%s holds the string denoting the %s column in the database.", t.ColumnConst(c.Name), c.Name)
			defs.Id(t.ColumnConst(c.Name)).Op("=").Lit(c.Name)
		}

		for _, r := range t.Relations {
			defs.Commentf("%s holds the name of the %s relation to the %s table.", t.RelationConst(r), r.Kind, r.Related.Name)
			defs.Id(t.RelationConst(r)).Op("=").Lit(r.Name)
		}
	})

	f.Commentf("Columns holds all SQL columns of %s.", t.Name)
	f.Var().Id("Columns").Op("=").Index().String().ValuesFunc(func(vals *jen.Group) {
		for _, c := range t.Table.Columns {
			vals.Id(t.ColumnConst(c.Name))
		}
	})

	if t.PK.Exists() {
		f.Comment("PrimaryKey holds the primary key columns, in key order.")
		f.Var().Id("PrimaryKey").Op("=").Index().String().ValuesFunc(func(vals *jen.Group) {
			for _, c := range t.PK.Columns {
				vals.Id(t.ColumnConst(c.Name))
			}
		})
	}

	for _, c := range t.Table.Columns {
		if len(c.Values) == 0 {
			continue
		}
		f.Commentf("%s holds the declared values of the %s column, in storage order.", t.ValuesConst(c.Name), c.Name)
		f.Var().Id(t.ValuesConst(c.Name)).Op("=").Add(stringSlice(c.Values))
	}

	return f
}
