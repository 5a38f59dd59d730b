package gen

import (
	"errors"

	"github.com/syssam/relgen/dialect"
)

// Option configures a graph and code generation.
type Option func(*Config) error

// WithDialect sets the platform from a dialect or driver name.
// Supported dialects: "sqlite", "mysql", "postgres".
func WithDialect(name string) Option {
	return func(c *Config) error {
		if err := dialect.Valid(name); err != nil {
			return NewConfigError("Dialect", name, "unsupported dialect; use sqlite, mysql, or postgres")
		}
		swap := c.Platform.UUIDSwap
		c.Platform = dialect.PlatformFor(name)
		c.Platform.UUIDSwap = swap
		return nil
	}
}

// WithPlatform sets the platform.
func WithPlatform(p dialect.Platform) Option {
	return func(c *Config) error {
		if p.Name == "" {
			return NewConfigError("Platform", nil, "platform name cannot be empty")
		}
		c.Platform = p
		return nil
	}
}

// WithEmulateForeignKeys enables cascade and set-null emulation on
// platforms with native delete triggers.
func WithEmulateForeignKeys(enabled bool) Option {
	return func(c *Config) error {
		c.EmulateForeignKeys = enabled
		return nil
	}
}

// WithUUIDSwap stores binary UUIDs with swapped time fields.
func WithUUIDSwap(enabled bool) Option {
	return func(c *Config) error {
		c.Platform.UUIDSwap = enabled
		return nil
	}
}

// WithExtension registers the extension hooks of a table.
func WithExtension(table string, ext *Extension) Option {
	return func(c *Config) error {
		if table == "" {
			return NewConfigError("Extension", nil, "table cannot be empty")
		}
		if ext == nil {
			return NewConfigError("Extension", table, "extension cannot be nil")
		}
		if c.Extensions == nil {
			c.Extensions = make(map[string]*Extension)
		}
		c.Extensions[table] = ext
		return nil
	}
}

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithPackage sets the output package import path.
// For example: "github.com/org/project/shop".
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = pkg
		return nil
	}
}

// WithTarget sets the output directory.
// The directory where generated code will be written.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithHooks adds generation hooks.
// Hooks are called before/after code generation.
func WithHooks(hooks ...Hook) Option {
	return func(c *Config) error {
		c.Hooks = append(c.Hooks, hooks...)
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
