package gen

import (
	"github.com/syssam/relgen/dialect"
)

// Config holds the configuration of a compiled graph and of code generation.
type Config struct {
	// Platform is the database platform the operations are compiled for.
	// The zero value behaves like a platform without native delete
	// triggers.
	Platform dialect.Platform
	// EmulateForeignKeys forces cascade and set-null emulation even on
	// platforms enforcing referential actions natively.
	EmulateForeignKeys bool
	// Extensions are the per table extension hooks, keyed by table name.
	Extensions map[string]*Extension

	// Target is the output directory of generated code.
	Target string
	// Package is the import path of the generated package.
	Package string
	// Header is the comment written at the top of each generated file.
	Header string
	// Hooks wrap the generator.
	Hooks []Hook
}

// EmulatesForeignKeys reports whether referential delete actions are
// emulated by the delete orchestration instead of the database.
func (c *Config) EmulatesForeignKeys() bool {
	return c.EmulateForeignKeys || !c.Platform.SupportsNativeDeleteTrigger()
}

// Generator is the interface implemented by code generators.
type Generator interface {
	// Generate generates the code of the graph.
	Generate(*Graph) error
}

// GenerateFunc is an adapter allowing ordinary functions to be used as a Generator.
type GenerateFunc func(*Graph) error

// Generate calls f(g).
func (f GenerateFunc) Generate(g *Graph) error {
	return f(g)
}

// Hook wraps a Generator with extra behavior, for example writing
// additional files after the main generation.
type Hook func(Generator) Generator

// Wrap wraps gen with the configured hooks. The first hook is the
// outermost one.
func (c *Config) Wrap(gen Generator) Generator {
	for i := len(c.Hooks) - 1; i >= 0; i-- {
		gen = c.Hooks[i](gen)
	}
	return gen
}
