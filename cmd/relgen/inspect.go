package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/sqlite"
	"github.com/spf13/cobra"

	"github.com/syssam/relgen/compiler/load"
	"github.com/syssam/relgen/dialect"
)

type inspectFlags struct {
	schemaName string
	output     string
	binaryUUID []string
	crossRef   []string
	readOnly   []string
}

func registerInspectCmd(rootCmd *cobra.Command, rf *rootFlags) {
	f := &inspectFlags{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Write the schema definition of a live database",
		Example: `  relgen inspect --dialect postgres --dsn "postgres://localhost/shop?sslmode=disable" -o shop.yaml
  RELGEN_DSN=shop.db relgen inspect --binary-uuid products.id`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rf.requireDSN(); err != nil {
				return err
			}
			data, err := f.inspect(cmd.Context(), rf)
			if err != nil {
				return err
			}
			if f.output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(f.output, data, 0o644)
		},
	}
	cmd.Flags().StringVar(&f.schemaName, "schema-name", "", "database schema to inspect (default: the connected one)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringSliceVar(&f.binaryUUID, "binary-uuid", nil, "binary columns holding UUIDs, as table.column")
	cmd.Flags().StringSliceVar(&f.crossRef, "cross-ref", nil, "cross-reference tables of many-to-many relations")
	cmd.Flags().StringSliceVar(&f.readOnly, "read-only", nil, "read-only tables")
	rootCmd.AddCommand(cmd)
}

func (f *inspectFlags) inspect(ctx context.Context, rf *rootFlags) ([]byte, error) {
	db, err := sql.Open(rf.dialect, rf.dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	drv, err := inspector(rf.dialect, db)
	if err != nil {
		return nil, err
	}
	name := f.schemaName
	if name == "" && rf.dialect == dialect.SQLite {
		name = "main"
	}
	s, err := drv.InspectSchema(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("inspecting schema: %w", err)
	}
	rdb, err := load.FromAtlas(s,
		load.WithBinaryUUID(f.binaryUUID...),
		load.WithCrossRef(f.crossRef...),
		load.WithReadOnly(f.readOnly...),
	)
	if err != nil {
		return nil, err
	}
	return load.FromDatabase(rdb).Marshal()
}

// inspector returns the atlas driver of a dialect.
func inspector(name string, db *sql.DB) (migrate.Driver, error) {
	switch name {
	case dialect.MySQL:
		return mysql.Open(db)
	case dialect.Postgres:
		return postgres.Open(db)
	case dialect.SQLite:
		return sqlite.Open(db)
	default:
		return nil, fmt.Errorf("unsupported dialect %q", name)
	}
}
