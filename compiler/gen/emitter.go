package gen

import "github.com/dave/jennifer/jen"

// Import paths of the runtime packages referenced by generated code.
const (
	RuntimePkg = "github.com/syssam/relgen"
	QueryPkg   = "github.com/syssam/relgen/query"
	SQLPkg     = "github.com/syssam/relgen/dialect/sql"
	DialectPkg = "github.com/syssam/relgen/dialect"
	SchemaPkg  = "github.com/syssam/relgen/schema"
	GenPkg     = "github.com/syssam/relgen/compiler/gen"
)

// TypeEmitter emits per-table code.
// Each method is called once per table of the graph.
type TypeEmitter interface {
	// GenPackage generates the table constant package ({table}/{table}.go).
	GenPackage(t *Type) *jen.File
	// GenQuery generates the typed query wrapper ({table}_query.go).
	GenQuery(t *Type) *jen.File
}

// GraphEmitter emits graph-level code.
// Each method is called once per generation run.
type GraphEmitter interface {
	// GenClient generates the typed client (client.go).
	GenClient() *jen.File
	// GenSchema generates the schema snapshot the client compiles at
	// runtime (schema.go).
	GenSchema() *jen.File
}

// Emitter is the interface implemented by code emitters.
//
//	┌───────────────────────────────────────────┐
//	│             JenniferGenerator             │
//	│  (parallel execution, file writing)       │
//	└─────────────────────┬─────────────────────┘
//	                      │ uses
//	                      ▼
//	┌───────────────────────────────────────────┐
//	│                  Emitter                  │
//	│  (jennifer files per table and per graph) │
//	└───────────────────────────────────────────┘
//
// A nil file returned by any method is skipped.
type Emitter interface {
	// Name returns the emitter name (e.g., "sql").
	Name() string
	TypeEmitter
	GraphEmitter
}

// GeneratorHelper provides helper methods for emitter implementations.
// JenniferGenerator implements this interface, allowing emitter packages
// to use helper methods without importing the full generator.
type GeneratorHelper interface {
	// NewFile creates a new Jennifer file with the standard header comment.
	NewFile(pkg string) *jen.File

	// Graph returns the compiled graph.
	Graph() *Graph

	// Pkg returns the output package name.
	Pkg() string

	// PkgPath returns the import path of the output package.
	PkgPath() string

	// TablePkgPath returns the import path of a table constant package.
	TablePkgPath(t *Type) string
}
