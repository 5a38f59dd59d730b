package gen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/compiler/gen/sql"
	"github.com/syssam/relgen/dialect"
	"github.com/syssam/relgen/internal/fixture"
)

func BenchmarkNewGraph(b *testing.B) {
	cfg, err := gen.NewConfig(gen.WithDialect(dialect.Postgres))
	require.NoError(b, err)
	for b.Loop() {
		_, err := gen.NewGraph(cfg, fixture.Shop())
		require.NoError(b, err)
	}
}

func BenchmarkGenerate(b *testing.B) {
	cfg, err := gen.NewConfig(
		gen.WithDialect(dialect.Postgres),
		gen.WithTarget(b.TempDir()),
		gen.WithPackage("github.com/acme/shop"),
	)
	require.NoError(b, err)
	graph, err := gen.NewGraph(cfg, fixture.Shop())
	require.NoError(b, err)
	for b.Loop() {
		require.NoError(b, sql.Generate(graph))
	}
}
