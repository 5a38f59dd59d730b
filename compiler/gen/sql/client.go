package sql

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/relgen/compiler/gen"
)

// genClient generates the client.go file.
func genClient(h gen.GeneratorHelper) *jen.File {
	f := h.NewFile(h.Pkg())

	genClientStruct(h, f)
	genClientConstructors(h, f)
	genClientAccessors(h, f)
	genTx(f)

	return f
}

// genClientStruct generates the Client struct.
func genClientStruct(h gen.GeneratorHelper, f *jen.File) {
	f.Commentf("Client is the typed client of the %s schema. It owns the instance pool", h.Graph().DB.Name)
	f.Comment("shared by its queries.")
	f.Type().Id("Client").Struct(
		jen.Op("*").Qual(gen.QueryPkg, "Client"),
	)
}

// genClientConstructors generates NewClient and NewClientConfig.
func genClientConstructors(h gen.GeneratorHelper, f *jen.File) {
	f.Comment("NewClient compiles the schema for the dialect of drv and returns a client")
	f.Comment("executing against it.")
	f.Func().Id("NewClient").Params(
		jen.Id("drv").Qual(gen.DialectPkg, "Driver"),
		jen.Id("opts").Op("...").Qual(gen.QueryPkg, "Option"),
	).Params(jen.Op("*").Id("Client"), jen.Error()).Block(
		jen.Return(jen.Id("NewClientConfig").Call(
			jen.Id("drv"),
			jen.Nil(),
			jen.Id("opts").Op("..."),
		)),
	)

	f.Comment("NewClientConfig is like NewClient but compiles the schema under cfg, for")
	f.Comment("example to register extensions. Without a platform in cfg, the platform")
	f.Comment("of the driver dialect is used. cfg is not modified.")
	f.Func().Id("NewClientConfig").Params(
		jen.Id("drv").Qual(gen.DialectPkg, "Driver"),
		jen.Id("cfg").Op("*").Qual(gen.GenPkg, "Config"),
		jen.Id("opts").Op("...").Qual(gen.QueryPkg, "Option"),
	).Params(jen.Op("*").Id("Client"), jen.Error()).Block(
		jen.Var().Id("c").Qual(gen.GenPkg, "Config"),
		jen.If(jen.Id("cfg").Op("!=").Nil()).Block(
			jen.Id("c").Op("=").Op("*").Id("cfg"),
		),
		jen.If(jen.Id("c").Dot("Platform").Dot("Name").Op("==").Lit("")).Block(
			jen.If(
				jen.Err().Op(":=").Id("c").Dot("Apply").Call(
					jen.Qual(gen.GenPkg, "WithDialect").Call(jen.Id("drv").Dot("Dialect").Call()),
				),
				jen.Err().Op("!=").Nil(),
			).Block(
				jen.Return(jen.Nil(), jen.Err()),
			),
		),
		jen.List(jen.Id("db"), jen.Err()).Op(":=").Id("Schema").Call(),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.List(jen.Id("g"), jen.Err()).Op(":=").Qual(gen.GenPkg, "NewGraph").Call(jen.Op("&").Id("c"), jen.Id("db")),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.Return(
			jen.Op("&").Id("Client").Values(jen.Dict{
				jen.Id("Client"): jen.Qual(gen.QueryPkg, "NewClient").Call(jen.Id("drv"), jen.Id("g"), jen.Id("opts").Op("...")),
			}),
			jen.Nil(),
		),
	)
}

// genClientAccessors generates one query accessor per table.
func genClientAccessors(h gen.GeneratorHelper, f *jen.File) {
	for _, t := range h.Graph().Nodes {
		f.Commentf("%s returns a new query over the %s table.", t.AccessorName(), t.Table.Name)
		f.Func().Params(jen.Id("c").Op("*").Id("Client")).Id(t.AccessorName()).Params().Op("*").Id(t.QueryName()).Block(
			jen.Return(jen.Op("&").Id(t.QueryName()).Values(jen.Dict{
				jen.Id("Query"): jen.Id("c").Dot("Query").Call(jen.Qual(h.TablePkgPath(t), "Table")),
			})),
		)
	}
}

// genTx generates the transactional client.
func genTx(f *jen.File) {
	f.Comment("Tx is a transactional client. Queries and deletes of its accessors run")
	f.Comment("inside the transaction.")
	f.Type().Id("Tx").Struct(
		jen.Op("*").Id("Client"),
		jen.Id("tx").Op("*").Qual(gen.QueryPkg, "Tx"),
	)

	f.Comment("Tx starts a new transaction. Nested transactions are not supported.")
	f.Func().Params(jen.Id("c").Op("*").Id("Client")).Id("Tx").Params(
		jen.Id("ctx").Qual("context", "Context"),
	).Params(jen.Op("*").Id("Tx"), jen.Error()).Block(
		jen.List(jen.Id("tx"), jen.Err()).Op(":=").Id("c").Dot("Client").Dot("Tx").Call(jen.Id("ctx")),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.Return(
			jen.Op("&").Id("Tx").Values(jen.Dict{
				jen.Id("Client"): jen.Op("&").Id("Client").Values(jen.Dict{
					jen.Id("Client"): jen.Id("tx").Dot("Client"),
				}),
				jen.Id("tx"): jen.Id("tx"),
			}),
			jen.Nil(),
		),
	)

	f.Comment("Commit commits the transaction.")
	f.Func().Params(jen.Id("tx").Op("*").Id("Tx")).Id("Commit").Params().Error().Block(
		jen.Return(jen.Id("tx").Dot("tx").Dot("Commit").Call()),
	)

	f.Comment("Rollback rolls back the transaction.")
	f.Func().Params(jen.Id("tx").Op("*").Id("Tx")).Id("Rollback").Params().Error().Block(
		jen.Return(jen.Id("tx").Dot("tx").Dot("Rollback").Call()),
	)
}
