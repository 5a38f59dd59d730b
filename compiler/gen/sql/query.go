package sql

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/relgen/compiler/gen"
)

const squirrelPkg = "github.com/Masterminds/squirrel"

// queryBuilder emits the methods of one typed query wrapper. Method names
// are emitted once; the first declaration wins.
type queryBuilder struct {
	h    gen.GeneratorHelper
	f    *jen.File
	t    *gen.Type
	name string
	recv string
	seen map[string]bool
}

// genQuery generates the typed query wrapper file ({table}_query.go).
func genQuery(h gen.GeneratorHelper, t *gen.Type) *jen.File {
	f := h.NewFile(h.Pkg())
	b := &queryBuilder{
		h:    h,
		f:    f,
		t:    t,
		name: t.QueryName(),
		recv: t.Receiver(),
		seen: make(map[string]bool),
	}

	f.Commentf("%s is the typed query over the %s table. The lookup, count and", b.name, t.Table.Name)
	f.Comment("delete terminals are promoted from the embedded query.")
	f.Type().Id(b.name).Struct(jen.Op("*").Qual(gen.QueryPkg, "Query"))

	b.genFilters()
	if t.PK.Exists() {
		b.genPrimaryKey()
	}
	for _, r := range t.Relations {
		b.genRelation(r)
	}
	b.genModifiers()
	return f
}

// col returns the qualified column constant of the table package.
func (b *queryBuilder) col(name string) jen.Code {
	return jen.Qual(b.h.TablePkgPath(b.t), b.t.ColumnConst(name))
}

// rel returns the qualified relation constant of the table package.
func (b *queryBuilder) rel(r *gen.Relation) jen.Code {
	return jen.Qual(b.h.TablePkgPath(b.t), b.t.RelationConst(r))
}

// chain emits a documented method calling the embedded query and
// returning the receiver. Each doc entry is one comment line.
func (b *queryBuilder) chain(method string, doc []string, params []jen.Code, body ...jen.Code) {
	if b.seen[method] {
		return
	}
	b.seen[method] = true
	for _, line := range doc {
		b.f.Comment(line)
	}
	body = append(body, jen.Return(jen.Id(b.recv)))
	b.f.Func().Params(jen.Id(b.recv).Op("*").Id(b.name)).Id(method).Params(params...).Op("*").Id(b.name).Block(body...)
}

// call returns "<recv>.Query.<method>(args...)".
func (b *queryBuilder) call(method string, args ...jen.Code) *jen.Statement {
	return jen.Id(b.recv).Dot("Query").Dot(method).Call(args...)
}

func (b *queryBuilder) genFilters() {
	for _, f := range b.t.Filters {
		c := f.Column
		b.chain(f.Name(), []string{
			fmt.Sprintf("%s filters the query on the %s column. The comparison defaults to", f.Name(), c.Name),
			"equality, or IN for lists.",
		}, cmpParams(),
			b.call("FilterBy", b.col(c.Name), jen.Id("v"), jen.Id("cmp").Op("...")),
		)
	}
	for _, f := range b.t.Filters {
		if !f.HasSingular() {
			continue
		}
		b.chain(f.SingularName(), []string{
			fmt.Sprintf("%s filters the query on a single %s of the %s column.", f.SingularName(), f.Column.Singular, f.Column.Name),
		}, cmpParams(),
			b.call("FilterBySingular", jen.Lit(f.Column.Singular), jen.Id("v"), jen.Id("cmp").Op("...")),
		)
	}
}

func (b *queryBuilder) genPrimaryKey() {
	doc := []string{"FilterByPrimaryKey filters by a primary key value."}
	if b.t.PK.IsComposite() {
		doc = []string{
			"FilterByPrimaryKey filters by a composite primary key, given as a list",
			"in primary key order.",
		}
	}
	b.chain("FilterByPrimaryKey", doc, []jen.Code{jen.Id("key").Any()},
		b.call("FilterByPrimaryKey", jen.Id("key")),
	)
	b.chain("FilterByPrimaryKeys", []string{
		"FilterByPrimaryKeys filters by a list of primary keys. An empty list matches",
		"no rows.",
	}, []jen.Code{jen.Id("keys").Any()},
		b.call("FilterByPrimaryKeys", jen.Id("keys")),
	)
	b.chain("Prune", []string{
		fmt.Sprintf("Prune excludes the given %s from the results.", b.t.Name),
	}, []jen.Code{jen.Id("e").Qual(gen.RuntimePkg, "Entity")},
		b.call("Prune", jen.Id("e")),
	)
}

func (b *queryBuilder) genRelation(r *gen.Relation) {
	related := relatedType(b.h, r)
	if related == nil {
		return
	}
	sub := related.QueryName()
	joinParams := func() []jen.Code {
		return []jen.Code{
			jen.Id("alias").String(),
			jen.Id("jt").Qual(gen.SQLPkg, "JoinType"),
		}
	}

	b.chain("FilterBy"+r.Name, []string{
		fmt.Sprintf("FilterBy%s filters by a related %s or a collection of them.", r.Name, related.Name),
	}, cmpParams(),
		b.call("FilterByRelation", b.rel(r), jen.Id("v"), jen.Id("cmp").Op("...")),
	)
	b.chain("Join"+r.Name, []string{
		fmt.Sprintf("Join%s joins the %s relation. An empty alias uses the relation", r.Name, r.Name),
		"name and an empty join type the relation default.",
	}, joinParams(),
		b.call("Join", b.rel(r), jen.Id("alias"), jen.Id("jt")),
	)
	b.chain("With"+r.Name, []string{
		fmt.Sprintf("With%s joins the %s relation and loads its columns along the", r.Name, r.Name),
		fmt.Sprintf("query rows, keyed %q.", r.Name+".<column>"),
	}, nil,
		b.call("With", b.rel(r)),
	)
	b.chain("Use"+r.Name+"Query", []string{
		fmt.Sprintf("Use%sQuery joins the %s relation and applies fn to a query over", r.Name, r.Name),
		fmt.Sprintf("the joined %s rows. Its filters are merged back into the receiver.", r.Related.Name),
	}, append(joinParams(), jen.Id("fn").Func().Params(jen.Op("*").Id(sub))),
		b.apply(sub, b.call("Use", b.rel(r), jen.Id("alias"), jen.Id("jt")))...,
	)

	b.useSubquery(r, sub, "Exists", "UseExists", "keeps rows having at least one related")
	b.useSubquery(r, sub, "NotExists", "UseNotExists", "keeps rows having no related")
	if r.Kind == gen.ManyToMany || r.IsComposite() {
		return
	}
	b.useSubquery(r, sub, "In", "UseIn", "keeps rows referenced by the selected")
	b.useSubquery(r, sub, "NotIn", "UseNotIn", "keeps rows not referenced by the selected")
}

func (b *queryBuilder) useSubquery(r *gen.Relation, sub, suffix, method, doc string) {
	name := "Use" + r.Name + suffix + "Query"
	b.chain(name, []string{
		fmt.Sprintf("%s %s %s rows.", name, doc, r.Related.Name),
		"fn filters the related rows.",
	}, []jen.Code{jen.Id("fn").Func().Params(jen.Op("*").Id(sub))},
		b.apply(sub, b.call(method, b.rel(r)))...,
	)
}

// apply opens a secondary query, hands it to fn and merges it back.
func (b *queryBuilder) apply(sub string, open jen.Code) []jen.Code {
	return []jen.Code{
		jen.Id("sub").Op(":=").Add(open),
		jen.If(jen.Id("fn").Op("!=").Nil()).Block(
			jen.Id("fn").Call(jen.Op("&").Id(sub).Values(jen.Dict{jen.Id("Query"): jen.Id("sub")})),
		),
		jen.Id("sub").Dot("EndUse").Call(),
	}
}

func (b *queryBuilder) genModifiers() {
	b.chain("Where", []string{"Where adds a raw predicate."},
		[]jen.Code{jen.Id("pred").Qual(squirrelPkg, "Sqlizer")},
		b.call("Where", jen.Id("pred")),
	)
	b.chain("OrderBy", []string{"OrderBy adds ORDER BY terms."},
		[]jen.Code{jen.Id("terms").Op("...").String()},
		b.call("OrderBy", jen.Id("terms").Op("...")),
	)
	b.chain("Limit", []string{"Limit limits the number of returned rows."},
		[]jen.Code{jen.Id("n").Uint64()},
		b.call("Limit", jen.Id("n")),
	)
	b.chain("Offset", []string{"Offset skips the first n rows."},
		[]jen.Code{jen.Id("n").Uint64()},
		b.call("Offset", jen.Id("n")),
	)

	b.f.Commentf("Clone returns a copy of the %s.", b.name)
	b.f.Func().Params(jen.Id(b.recv).Op("*").Id(b.name)).Id("Clone").Params().Op("*").Id(b.name).Block(
		jen.Return(jen.Op("&").Id(b.name).Values(jen.Dict{
			jen.Id("Query"): jen.Id(b.recv).Dot("Query").Dot("Clone").Call(),
		})),
	)
}
