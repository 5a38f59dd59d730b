package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/compiler/load"
	"github.com/syssam/relgen/dialect"
	"github.com/syssam/relgen/schema"
)

const (
	envDSN     = "RELGEN_DSN"
	envDialect = "RELGEN_DIALECT"
)

// rootFlags holds the flags shared by every sub-command.
type rootFlags struct {
	envFile string
	dsn     string
	dialect string
	verbose bool
}

// newRootCmd returns the relgen command with its sub-commands.
func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:          "relgen",
		Short:        "Compile relational schemas into typed query packages",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return f.load(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&f.envFile, "env-file", ".env", "file of environment variables to load (RELGEN_DSN, RELGEN_DIALECT)")
	cmd.PersistentFlags().StringVar(&f.dsn, "dsn", "", "data source name (default $RELGEN_DSN)")
	cmd.PersistentFlags().StringVar(&f.dialect, "dialect", "", "database dialect: sqlite, mysql or postgres (default $RELGEN_DIALECT, then sqlite)")
	cmd.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "log executed statements and generation steps")

	registerGenerateCmd(cmd, f)
	registerInspectCmd(cmd, f)
	registerSQLCmd(cmd, f)
	return cmd
}

// load reads the env file and fills unset flags from the environment.
// A missing default env file is ignored.
func (f *rootFlags) load(cmd *cobra.Command) error {
	if err := godotenv.Load(f.envFile); err != nil {
		if cmd.Flag("env-file").Changed || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading env file %s: %w", f.envFile, err)
		}
	}
	if f.dsn == "" {
		f.dsn = os.Getenv(envDSN)
	}
	if f.dialect == "" {
		f.dialect = os.Getenv(envDialect)
	}
	if f.dialect == "" {
		f.dialect = dialect.SQLite
	}
	f.dialect = dialect.Normalize(f.dialect)
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	return nil
}

// graph loads the definition file at path and compiles it for the
// configured dialect.
func (f *rootFlags) graph(path string, opts ...gen.Option) (*gen.Graph, error) {
	if path == "" {
		return nil, errors.New("missing --schema definition file")
	}
	db, err := load.File(path)
	if err != nil {
		return nil, err
	}
	return f.compile(db, opts...)
}

// compile compiles db for the configured dialect.
func (f *rootFlags) compile(db *schema.Database, opts ...gen.Option) (*gen.Graph, error) {
	cfg, err := gen.NewConfig(append([]gen.Option{gen.WithDialect(f.dialect)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return gen.NewGraph(cfg, db)
}

func (f *rootFlags) requireDSN() error {
	if f.dsn == "" {
		return fmt.Errorf("missing data source name: set --dsn or $%s", envDSN)
	}
	return nil
}
