package sql

import (
	"context"
	"path"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/relgen/compiler/gen"
)

// Generate is a convenience function to generate the typed wrappers of a
// graph with the Jennifer generator. This is the recommended entry point
// for code generation.
//
// Hooks registered in g.Config.Hooks wrap the generation, the first hook
// being the outermost one.
//
// Example:
//
//	import "github.com/syssam/relgen/compiler/gen/sql"
//	err := sql.Generate(graph)
func Generate(g *gen.Graph) error {
	if g.Config == nil || g.Target == "" {
		return gen.NewConfigError("Target", nil, "missing target directory in config")
	}
	base := gen.GenerateFunc(func(g *gen.Graph) error {
		generator := gen.NewJenniferGenerator(g, g.Target)
		if g.Package != "" {
			generator.WithPackage(path.Base(g.Package))
		}
		generator.WithEmitter(NewEmitter(generator))
		return generator.Generate(context.Background())
	})
	return g.Wrap(base).Generate(g)
}

// Emitter implements gen.Emitter for SQL databases. The generated
// wrappers delegate to the query package, which builds the statements
// for the platform the client is opened with.
type Emitter struct {
	helper gen.GeneratorHelper
}

// NewEmitter creates a new SQL emitter.
// The helper parameter should be a *gen.JenniferGenerator.
func NewEmitter(helper gen.GeneratorHelper) *Emitter {
	return &Emitter{helper: helper}
}

// Name returns the emitter name.
func (e *Emitter) Name() string {
	return "sql"
}

// GenPackage generates the table constant package ({table}/{table}.go).
func (e *Emitter) GenPackage(t *gen.Type) *jen.File {
	return genPackage(e.helper, t)
}

// GenQuery generates the typed query wrapper ({table}_query.go).
func (e *Emitter) GenQuery(t *gen.Type) *jen.File {
	return genQuery(e.helper, t)
}

// GenClient generates the typed client (client.go).
func (e *Emitter) GenClient() *jen.File {
	return genClient(e.helper)
}

// GenSchema generates the schema snapshot (schema.go).
func (e *Emitter) GenSchema() *jen.File {
	return genSchema(e.helper)
}

// Verify Emitter implements gen.Emitter at compile time.
var _ gen.Emitter = (*Emitter)(nil)
