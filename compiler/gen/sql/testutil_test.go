package sql

import (
	"path"
	"testing"

	"github.com/dave/jennifer/jen"
	"github.com/stretchr/testify/require"

	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/dialect"
	"github.com/syssam/relgen/internal/fixture"
)

// mockHelper implements gen.GeneratorHelper over the shop schema.
type mockHelper struct {
	graph *gen.Graph
}

func newMockHelper(t *testing.T, opts ...gen.Option) *mockHelper {
	t.Helper()
	cfg, err := gen.NewConfig(append([]gen.Option{
		gen.WithDialect(dialect.SQLite),
		gen.WithPackage("github.com/acme/shop"),
	}, opts...)...)
	require.NoError(t, err)
	g, err := gen.NewGraph(cfg, fixture.Shop())
	require.NoError(t, err)
	return &mockHelper{graph: g}
}

func (m *mockHelper) NewFile(pkg string) *jen.File {
	f := jen.NewFile(pkg)
	f.HeaderComment(gen.DefaultHeader)
	return f
}

func (m *mockHelper) Graph() *gen.Graph { return m.graph }
func (m *mockHelper) Pkg() string       { return "shop" }
func (m *mockHelper) PkgPath() string   { return m.graph.Package }

func (m *mockHelper) TablePkgPath(t *gen.Type) string {
	return path.Join(m.PkgPath(), t.Package())
}

// Ensure mockHelper implements gen.GeneratorHelper.
var _ gen.GeneratorHelper = (*mockHelper)(nil)

// shopType returns the compiled type of a shop table.
func (m *mockHelper) shopType(t *testing.T, table string) *gen.Type {
	t.Helper()
	typ, err := m.graph.Type(table)
	require.NoError(t, err)
	return typ
}
