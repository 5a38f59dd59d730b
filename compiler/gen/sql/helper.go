package sql

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/schema"
)

// typeConsts maps column types to their constant names in the schema package.
var typeConsts = map[schema.Type]string{
	schema.TypeOther:      "TypeOther",
	schema.TypeInteger:    "TypeInteger",
	schema.TypeFloat:      "TypeFloat",
	schema.TypeDecimal:    "TypeDecimal",
	schema.TypeDate:       "TypeDate",
	schema.TypeTime:       "TypeTime",
	schema.TypeTimestamp:  "TypeTimestamp",
	schema.TypeBoolean:    "TypeBoolean",
	schema.TypeString:     "TypeString",
	schema.TypeText:       "TypeText",
	schema.TypeEnum:       "TypeEnum",
	schema.TypeSet:        "TypeSet",
	schema.TypeArray:      "TypeArray",
	schema.TypeObject:     "TypeObject",
	schema.TypeUUID:       "TypeUUID",
	schema.TypeUUIDBinary: "TypeUUIDBinary",
	schema.TypeBinary:     "TypeBinary",
	schema.TypeJSON:       "TypeJSON",
}

// actionConsts maps referential actions to their constant names.
var actionConsts = map[schema.Action]string{
	schema.ActionNone:       "ActionNone",
	schema.ActionRestrict:   "ActionRestrict",
	schema.ActionCascade:    "ActionCascade",
	schema.ActionSetNull:    "ActionSetNull",
	schema.ActionSetDefault: "ActionSetDefault",
}

func typeConst(t schema.Type) jen.Code {
	name, ok := typeConsts[t]
	if !ok {
		name = typeConsts[schema.TypeOther]
	}
	return jen.Qual(gen.SchemaPkg, name)
}

func actionConst(a schema.Action) jen.Code {
	name, ok := actionConsts[a]
	if !ok {
		name = actionConsts[schema.ActionNone]
	}
	return jen.Qual(gen.SchemaPkg, name)
}

// stringSlice returns a []string literal.
func stringSlice(values []string) *jen.Statement {
	return jen.Index().String().ValuesFunc(func(g *jen.Group) {
		for _, v := range values {
			g.Lit(v)
		}
	})
}

// cmpParams returns the "v any, cmp ...sql.Comparison" parameter list.
func cmpParams() []jen.Code {
	return []jen.Code{
		jen.Id("v").Any(),
		jen.Id("cmp").Op("...").Qual(gen.SQLPkg, "Comparison"),
	}
}

// relatedType returns the type of the related table of r.
func relatedType(h gen.GeneratorHelper, r *gen.Relation) *gen.Type {
	t, err := h.Graph().Type(r.Related.Name)
	if err != nil {
		return nil
	}
	return t
}
