package gen

import (
	"bytes"
	"context"
	"os"
	"path"
	"path/filepath"
	"runtime"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
)

// DefaultHeader is written at the top of each generated file when the
// config carries no header.
const DefaultHeader = "Code generated by relgen. DO NOT EDIT."

// JenniferGenerator generates the typed wrappers of a graph with jennifer.
// Files are rendered in parallel and formatted by a FileWriter.
type JenniferGenerator struct {
	graph   *Graph
	workers int
	outDir  string
	pkg     string
	emitter Emitter
	writer  *FileWriter
}

// NewJenniferGenerator creates a new Jennifer-based generator.
// You must call WithEmitter() to set an emitter before calling Generate().
//
// Example:
//
//	import "github.com/syssam/relgen/compiler/gen/sql"
//
//	g := gen.NewJenniferGenerator(graph, outDir)
//	g.WithEmitter(sql.NewEmitter(g))
//	g.Generate(ctx)
func NewJenniferGenerator(g *Graph, outDir string) *JenniferGenerator {
	return &JenniferGenerator{
		graph:   g,
		workers: runtime.GOMAXPROCS(0),
		outDir:  outDir,
		pkg:     filepath.Base(outDir),
		writer:  NewFileWriter(outDir),
	}
}

// WithWorkers sets the number of parallel workers.
func (g *JenniferGenerator) WithWorkers(n int) *JenniferGenerator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// WithPackage sets the output package name.
func (g *JenniferGenerator) WithPackage(pkg string) *JenniferGenerator {
	if pkg != "" {
		g.pkg = pkg
	}
	return g
}

// WithEmitter sets the emitter producing the jennifer files.
func (g *JenniferGenerator) WithEmitter(e Emitter) *JenniferGenerator {
	if e != nil {
		g.emitter = e
	}
	return g
}

// Metrics returns the metrics of the file writer.
func (g *JenniferGenerator) Metrics() WriterMetrics {
	return g.writer.Metrics()
}

// Generate renders and writes every file of the graph.
// Returns an error if no emitter has been set via WithEmitter().
func (g *JenniferGenerator) Generate(ctx context.Context) error {
	if g.emitter == nil {
		return NewConfigError("Emitter", nil, "no emitter set: call WithEmitter() before Generate()")
	}
	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return err
	}

	errg, ctx := errgroup.WithContext(ctx)
	errg.SetLimit(g.workers)
	write := func(phase, name string, gen func() *jen.File) {
		errg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return g.writeFile(phase, name, gen())
		})
	}

	for _, t := range g.graph.Nodes {
		pkg := t.Package()
		write("package", path.Join(pkg, pkg+".go"), func() *jen.File { return g.emitter.GenPackage(t) })
		write("query", pkg+"_query.go", func() *jen.File { return g.emitter.GenQuery(t) })
	}
	write("client", "client.go", g.emitter.GenClient)
	write("schema", "schema.go", g.emitter.GenSchema)

	return errg.Wait()
}

// =============================================================================
// GeneratorHelper interface implementation
// =============================================================================

// NewFile creates a new Jennifer file with the standard header comment.
func (g *JenniferGenerator) NewFile(pkg string) *jen.File {
	f := jen.NewFile(pkg)
	header := DefaultHeader
	if g.graph.Config != nil && g.graph.Header != "" {
		header = g.graph.Header
	}
	f.HeaderComment(header)
	return f
}

// Graph returns the compiled graph.
func (g *JenniferGenerator) Graph() *Graph {
	return g.graph
}

// Pkg returns the output package name.
func (g *JenniferGenerator) Pkg() string {
	return g.pkg
}

// PkgPath returns the import path of the output package. Without a
// configured package path the package name is used.
func (g *JenniferGenerator) PkgPath() string {
	if g.graph.Config != nil && g.graph.Package != "" {
		return g.graph.Package
	}
	return g.pkg
}

// TablePkgPath returns the import path of the table constant package.
func (g *JenniferGenerator) TablePkgPath(t *Type) string {
	return path.Join(g.PkgPath(), t.Package())
}

// Verify JenniferGenerator implements GeneratorHelper at compile time.
var _ GeneratorHelper = (*JenniferGenerator)(nil)

// writeFile renders f and hands it to the writer. A nil file is skipped.
func (g *JenniferGenerator) writeFile(phase, name string, f *jen.File) error {
	if f == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return NewGenerationError(phase, name, "render", err)
	}
	return g.writer.Write(phase, name, buf.Bytes())
}

// GenerateJennifer is a convenience function running a generator for g
// with the given emitter factory. The factory receives the generator as
// its helper.
//
// Use the sql.Generate() helper from gen/sql package instead:
//
//	import "github.com/syssam/relgen/compiler/gen/sql"
//	err := sql.Generate(graph)
func GenerateJennifer(g *Graph, emitter func(GeneratorHelper) Emitter) error {
	if g.Config == nil || g.Target == "" {
		return NewConfigError("Target", nil, "missing target directory in config")
	}
	gen := NewJenniferGenerator(g, g.Target)
	if g.Package != "" {
		gen.WithPackage(path.Base(g.Package))
	}
	return gen.WithEmitter(emitter(gen)).Generate(context.Background())
}
