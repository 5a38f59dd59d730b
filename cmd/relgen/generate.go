package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/compiler/gen/sql"
	"github.com/syssam/relgen/compiler/load"
	"github.com/syssam/relgen/schema"
)

type generateFlags struct {
	schema string
	target string
	pkg    string
	header string
	watch  bool
}

func registerGenerateCmd(rootCmd *cobra.Command, rf *rootFlags) {
	f := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the typed query package of a schema definition",
		Example: `  relgen generate --schema shop.yaml --target ./shop --package github.com/acme/app/shop
  relgen generate --schema shop.yaml --target ./shop --package github.com/acme/app/shop --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.pkg == "" {
				return errors.New("missing --package import path")
			}
			if f.schema == "" {
				return errors.New("missing --schema definition file")
			}
			if !f.watch {
				db, err := load.File(f.schema)
				if err != nil {
					return err
				}
				return f.generate(rf, db)
			}
			return load.Watch(cmd.Context(), f.schema, func(db *schema.Database, err error) {
				if err != nil {
					slog.Error("loading schema definition", "path", f.schema, "error", err)
					return
				}
				if err := f.generate(rf, db); err != nil {
					slog.Error("generating package", "path", f.schema, "error", err)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&f.schema, "schema", "s", "", "schema definition file (YAML or JSON)")
	cmd.Flags().StringVarP(&f.target, "target", "t", ".", "output directory")
	cmd.Flags().StringVarP(&f.pkg, "package", "p", "", "import path of the generated package")
	cmd.Flags().StringVar(&f.header, "header", "", "header comment of generated files")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "regenerate whenever the definition file changes")
	rootCmd.AddCommand(cmd)
}

func (f *generateFlags) generate(rf *rootFlags, db *schema.Database) error {
	opts := []gen.Option{gen.WithTarget(f.target), gen.WithPackage(f.pkg)}
	if f.header != "" {
		opts = append(opts, gen.WithHeader(f.header))
	}
	g, err := rf.compile(db, opts...)
	if err != nil {
		return err
	}
	if err := sql.Generate(g); err != nil {
		return fmt.Errorf("generating %s: %w", f.pkg, err)
	}
	slog.Info("generated package", "package", f.pkg, "target", f.target, "tables", len(g.Nodes))
	return nil
}
