// Package gen compiles a relational schema into per-table operation sets
// and generates typed Go wrappers for them.
//
// # Architecture
//
// The compilation pipeline follows this flow:
//
//	schema.Database (tables, columns, foreign keys)
//	        ↓
//	   Classify (one Behavior per column)
//	        ↓
//	   Filter / PrimaryKey / Relation synthesis
//	        ↓
//	   DeletePlan (cascade and set-null emulation)
//	        ↓
//	   Graph (one Type per table)
//
// The graph is interpreted at runtime by the query package, and can be
// emitted as typed wrappers by an Emitter (see the sql subpackage).
//
// # Key Types
//
//   - Graph: the compiled types of a database, in declaration order
//   - Type: the operation set of one table
//   - Filter: the column filter synthesized from a column Behavior
//   - Relation: a many-to-one, one-to-many or many-to-many relation
//   - PrimaryKey: key resolution, predicates and pool key encoding
//   - DeletePlan: delete permissions and emulated referential actions
//   - Config: platform, extensions and generation settings
//
// # Error Handling
//
//   - ConfigError: configuration errors
//   - GenerationError: code generation errors
//
// Runtime usage errors (unknown columns, key arity, unsupported
// comparisons) are relgen.UsageError values; enum and set values outside
// the declared value set are relgen.ValidationError values.
//
// # Configuration
//
// Configuration is done via the functional options pattern:
//
//	cfg, err := gen.NewConfig(
//	    gen.WithDialect(dialect.SQLite),
//	    gen.WithExtension("orders", &gen.Extension{PreSelect: scopeTenant}),
//	    gen.WithTarget("./shop"),
//	    gen.WithPackage("github.com/org/project/shop"),
//	)
//	graph, err := gen.NewGraph(cfg, db)
//
// # Usage
//
// The recommended way to generate code is through the sql package:
//
//	import "github.com/syssam/relgen/compiler/gen/sql"
//
//	err := sql.Generate(graph)
//
// Or manually configure the generator:
//
//	generator := gen.NewJenniferGenerator(graph, outDir).WithWorkers(4)
//	generator.WithEmitter(sql.NewEmitter(generator))
//	err := generator.Generate(ctx)
//
// # Generated Output
//
//	{output}/
//	├── client.go          // Client with one accessor per table
//	├── schema.go          // Schema snapshot compiled by NewClient
//	├── {table}_query.go   // Typed query wrapper
//	└── {table}/
//	    └── {table}.go     // Table, column and relation constants
package gen
