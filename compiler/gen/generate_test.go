package gen

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/dave/jennifer/jen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constEmitter emits one constant per file.
type constEmitter struct {
	h     GeneratorHelper
	calls atomic.Int32
}

func (e *constEmitter) Name() string { return "const" }

func (e *constEmitter) GenPackage(t *Type) *jen.File {
	e.calls.Add(1)
	f := e.h.NewFile(t.Package())
	f.Const().Id("Table").Op("=").Lit(t.Table.Name)
	return f
}

func (e *constEmitter) GenQuery(t *Type) *jen.File {
	e.calls.Add(1)
	if !t.PK.Exists() {
		return nil
	}
	f := e.h.NewFile(e.h.Pkg())
	f.Const().Id(t.QueryName() + "Package").Op("=").Lit(e.h.TablePkgPath(t))
	return f
}

func (e *constEmitter) GenClient() *jen.File {
	e.calls.Add(1)
	f := e.h.NewFile(e.h.Pkg())
	f.Const().Id("Tables").Op("=").Lit(len(e.h.Graph().Nodes))
	return f
}

func (e *constEmitter) GenSchema() *jen.File {
	e.calls.Add(1)
	return nil
}

func TestJenniferGenerator(t *testing.T) {
	target := t.TempDir()
	g := shopGraph(t, WithPackage("github.com/acme/shop"), WithTarget(target))

	generator := NewJenniferGenerator(g, target).WithPackage("shop").WithWorkers(2)
	e := &constEmitter{h: generator}
	require.NoError(t, generator.WithEmitter(e).Generate(context.Background()))
	assert.EqualValues(t, 2*len(g.Nodes)+2, e.calls.Load())

	src, err := os.ReadFile(filepath.Join(target, "orderlines", "orderlines.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "// "+DefaultHeader)
	assert.Contains(t, string(src), "package orderlines")
	assert.Contains(t, string(src), `Table = "order_lines"`)

	src, err = os.ReadFile(filepath.Join(target, "orders_query.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "package shop")
	assert.Contains(t, string(src), `"github.com/acme/shop/orders"`)

	_, err = os.Stat(filepath.Join(target, "settings_query.go"))
	assert.True(t, os.IsNotExist(err), "nil files are skipped")
	_, err = os.Stat(filepath.Join(target, "schema.go"))
	assert.True(t, os.IsNotExist(err))

	m := generator.Metrics()
	assert.Equal(t, 2*len(g.Nodes), m.FilesGenerated)
	assert.Positive(t, m.TotalBytes)
}

func TestGeneratorHelper(t *testing.T) {
	g := shopGraph(t, WithHeader("Code generated by shopgen."))
	generator := NewJenniferGenerator(g, "/tmp/out/shop")
	assert.Same(t, g, generator.Graph())
	assert.Equal(t, "shop", generator.Pkg())
	assert.Equal(t, "shop", generator.PkgPath())

	orders, err := g.Type("orders")
	require.NoError(t, err)
	assert.Equal(t, "shop/orders", generator.TablePkgPath(orders))
	assert.Contains(t, generator.NewFile("shop").GoString(), "// Code generated by shopgen.")
}

func TestGenerateWithoutEmitter(t *testing.T) {
	g := shopGraph(t)
	err := NewJenniferGenerator(g, t.TempDir()).WithEmitter(nil).Generate(context.Background())
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestGenerateCanceled(t *testing.T) {
	g := shopGraph(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	target := t.TempDir()
	generator := NewJenniferGenerator(g, target)
	err := generator.WithEmitter(&constEmitter{h: generator}).Generate(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGenerateJennifer(t *testing.T) {
	t.Run("missing target", func(t *testing.T) {
		err := GenerateJennifer(shopGraph(t), func(h GeneratorHelper) Emitter { return &constEmitter{h: h} })
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("package from config", func(t *testing.T) {
		target := t.TempDir()
		g := shopGraph(t, WithTarget(target), WithPackage("github.com/acme/store"))
		require.NoError(t, GenerateJennifer(g, func(h GeneratorHelper) Emitter { return &constEmitter{h: h} }))
		src, err := os.ReadFile(filepath.Join(target, "client.go"))
		require.NoError(t, err)
		assert.Contains(t, string(src), "package store")
	})
}

func TestFileWriter(t *testing.T) {
	t.Run("formats and fixes imports", func(t *testing.T) {
		dir := t.TempDir()
		w := NewFileWriter(dir)
		src := []byte("package shop\nimport \"os\"\nfunc Name() string {   return   \"shop\" }\n")
		require.NoError(t, w.Write("client", "client.go", src))

		out, err := os.ReadFile(filepath.Join(dir, "client.go"))
		require.NoError(t, err)
		assert.NotContains(t, string(out), `"os"`, "unused imports are removed")
		assert.Contains(t, string(out), "return \"shop\"")
		assert.Equal(t, 1, w.Metrics().FilesGenerated)
	})

	t.Run("writes debug file on format failure", func(t *testing.T) {
		dir := t.TempDir()
		w := NewFileWriter(dir)
		src := []byte("package shop\nfunc {")
		err := w.Write("query", filepath.Join("nested", "broken.go"), src)
		require.Error(t, err)
		assert.True(t, IsGenerationError(err))

		debug, rerr := os.ReadFile(filepath.Join(dir, "nested", "broken.go.error"))
		require.NoError(t, rerr)
		assert.Equal(t, src, debug)
		_, serr := os.Stat(filepath.Join(dir, "nested", "broken.go"))
		assert.True(t, os.IsNotExist(serr))
		assert.Zero(t, w.Metrics().FilesGenerated)
	})
}
