package sql

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/schema"
)

// genSchema generates the schema.go file: a snapshot of the schema the
// graph was compiled from, resolved again by the generated client.
func genSchema(h gen.GeneratorHelper) *jen.File {
	f := h.NewFile(h.Pkg())
	db := h.Graph().DB

	f.Comment("Schema returns the schema the client is compiled from. Each call returns")
	f.Comment("a new, freshly resolved database.")
	f.Func().Id("Schema").Params().Params(jen.Op("*").Qual(gen.SchemaPkg, "Database"), jen.Error()).Block(
		jen.Return(jen.Qual(gen.SchemaPkg, "NewDatabase").CallFunc(func(args *jen.Group) {
			args.Lit(db.Name)
			for _, t := range db.Tables {
				args.Line().Add(tableLit(t))
			}
			args.Line()
		})),
	)
	return f
}

func tableLit(t *schema.Table) jen.Code {
	d := jen.Dict{jen.Id("Name"): jen.Lit(t.Name)}
	setString(d, "Model", t.Model)
	setString(d, "Description", t.Description)
	setString(d, "AliasOf", t.AliasOf)
	setBool(d, "Abstract", t.Abstract)
	setBool(d, "ReadOnly", t.ReadOnly)
	setBool(d, "BulkLoad", t.BulkLoad)
	setBool(d, "CrossRef", t.CrossRef)
	d[jen.Id("Columns")] = jen.Index().Op("*").Qual(gen.SchemaPkg, "Column").ValuesFunc(func(g *jen.Group) {
		for _, c := range t.Columns {
			g.Line().Add(columnLit(c))
		}
		g.Line()
	})
	if len(t.ForeignKeys) > 0 {
		d[jen.Id("ForeignKeys")] = jen.Index().Op("*").Qual(gen.SchemaPkg, "ForeignKey").ValuesFunc(func(g *jen.Group) {
			for _, fk := range t.ForeignKeys {
				g.Line().Add(foreignKeyLit(fk))
			}
			g.Line()
		})
	}
	if i := t.Inheritance; i != nil {
		classes := make(jen.Dict, len(i.Classes))
		for k, v := range i.Classes {
			classes[jen.Lit(k)] = jen.Lit(v)
		}
		d[jen.Id("Inheritance")] = jen.Op("&").Qual(gen.SchemaPkg, "Inheritance").Values(jen.Dict{
			jen.Id("Column"):  jen.Lit(i.Column),
			jen.Id("Classes"): jen.Map(jen.String()).String().Values(classes),
		})
	}
	return jen.Op("&").Qual(gen.SchemaPkg, "Table").Values(d)
}

func columnLit(c *schema.Column) jen.Code {
	d := jen.Dict{
		jen.Id("Name"): jen.Lit(c.Name),
		jen.Id("Type"): typeConst(c.Type),
	}
	setBool(d, "Nullable", c.Nullable)
	setBool(d, "PrimaryKey", c.PrimaryKey)
	setBool(d, "LazyLoad", c.LazyLoad)
	setString(d, "Singular", c.Singular)
	if len(c.Values) > 0 {
		d[jen.Id("Values")] = stringSlice(c.Values)
	}
	return jen.Values(d)
}

func foreignKeyLit(fk *schema.ForeignKey) jen.Code {
	d := jen.Dict{
		jen.Id("ForeignTableName"): jen.Lit(fk.ForeignTableName),
		jen.Id("References"): jen.Index().Qual(gen.SchemaPkg, "Reference").ValuesFunc(func(g *jen.Group) {
			for _, r := range fk.References {
				g.Values(jen.Dict{
					jen.Id("Local"):   jen.Lit(r.Local),
					jen.Id("Foreign"): jen.Lit(r.Foreign),
				})
			}
		}),
	}
	setString(d, "Name", fk.Name)
	setString(d, "RefName", fk.RefName)
	if fk.OnDelete != schema.ActionNone {
		d[jen.Id("OnDelete")] = actionConst(fk.OnDelete)
	}
	if fk.OnUpdate != schema.ActionNone {
		d[jen.Id("OnUpdate")] = actionConst(fk.OnUpdate)
	}
	return jen.Values(d)
}

func setString(d jen.Dict, field, v string) {
	if v != "" {
		d[jen.Id(field)] = jen.Lit(v)
	}
}

func setBool(d jen.Dict, field string, v bool) {
	if v {
		d[jen.Id(field)] = jen.True()
	}
}
