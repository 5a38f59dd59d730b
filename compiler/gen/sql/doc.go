// Package sql provides the SQL emitter of the Jennifer generator.
//
// This package implements the gen.Emitter interface. The emitted wrappers
// delegate to the query package at runtime, so the same code serves
// PostgreSQL, MySQL and SQLite.
//
// Usage:
//
//	import (
//	    "github.com/syssam/relgen/compiler/gen"
//	    "github.com/syssam/relgen/compiler/gen/sql"
//	)
//
//	generator := gen.NewJenniferGenerator(graph, outDir)
//	generator.WithEmitter(sql.NewEmitter(generator))
//	generator.Generate(ctx)
//
// Generated code structure:
//
//	{output}/
//	├── client.go           # Client, NewClient, one accessor per table, Tx
//	├── schema.go           # Schema() snapshot
//	├── {table}_query.go    # {Type}Query: typed filters, relations, modifiers
//	└── {table}/
//	    └── {table}.go      # Table, Column*, Relation*, Columns, PrimaryKey
//
// A typed query embeds *query.Query, so lookups (FindPk, FindPks, Find,
// FindOne, RequireOne, Iterate), Count, Exists, Delete and DeleteAll are
// promoted from it.
package sql
