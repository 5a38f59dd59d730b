package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syssam/relgen"
	"github.com/syssam/relgen/dialect/sql"
	"github.com/syssam/relgen/query"
)

type sqlFlags struct {
	schema  string
	filters []string
	pk      []string
	orderBy []string
	limit   uint64
	count   bool
	del     bool
	all     bool
}

func registerSQLCmd(rootCmd *cobra.Command, rf *rootFlags) {
	f := &sqlFlags{}
	cmd := &cobra.Command{
		Use:   "sql TABLE",
		Short: "Run a compiled table operation against a database",
		Long: `Run a lookup, count or delete of one table against the database of --dsn.
Rows are written as YAML. Deletes emulate the referential actions the
platform does not enforce.`,
		Example: `  relgen sql orders --schema shop.yaml --filter status=paid --limit 10
  relgen sql orders --schema shop.yaml --pk 1 --pk 2
  relgen sql customers --schema shop.yaml --filter id=7 --delete`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rf.requireDSN(); err != nil {
				return err
			}
			return f.run(cmd.Context(), cmd.OutOrStdout(), rf, args[0])
		},
	}
	cmd.Flags().StringVarP(&f.schema, "schema", "s", "", "schema definition file (YAML or JSON)")
	cmd.Flags().StringArrayVarP(&f.filters, "filter", "f", nil, "column filter as column=value, a comma separated value filters by a list")
	cmd.Flags().StringArrayVar(&f.pk, "pk", nil, "primary key value, repeated for composite keys")
	cmd.Flags().StringArrayVar(&f.orderBy, "order-by", nil, "ORDER BY term")
	cmd.Flags().Uint64Var(&f.limit, "limit", 0, "maximum number of rows")
	cmd.Flags().BoolVar(&f.count, "count", false, "count the matching rows")
	cmd.Flags().BoolVar(&f.del, "delete", false, "delete the matching rows")
	cmd.Flags().BoolVar(&f.all, "all", false, "with --delete, delete every row of the table")
	cmd.MarkFlagsMutuallyExclusive("count", "delete")
	rootCmd.AddCommand(cmd)
}

func (f *sqlFlags) run(ctx context.Context, w io.Writer, rf *rootFlags, table string) error {
	g, err := rf.graph(f.schema)
	if err != nil {
		return err
	}
	drv, err := sql.Open(rf.dialect, rf.dsn)
	if err != nil {
		return err
	}
	defer drv.Close()
	stats := sql.NewStatsDriver(drv)
	defer func() {
		slog.Debug("statements executed", "stats", stats.QueryStats().Stats().String())
	}()

	q := query.NewClient(stats, g).Query(table)
	for _, filter := range f.filters {
		column, value, ok := strings.Cut(filter, "=")
		if !ok {
			return fmt.Errorf("invalid filter %q, expected column=value", filter)
		}
		q.FilterBy(column, filterValue(value))
	}
	if len(f.orderBy) > 0 {
		q.OrderBy(f.orderBy...)
	}
	if f.limit > 0 {
		q.Limit(f.limit)
	}

	switch {
	case f.del:
		var n int64
		if f.all {
			n, err = q.DeleteAll(ctx)
		} else {
			n, err = q.Delete(ctx)
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "deleted: %d\n", n)
		return err
	case f.count:
		n, err := q.Count(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "count: %d\n", n)
		return err
	case len(f.pk) > 0:
		e, err := q.FindPk(ctx, primaryKey(f.pk))
		if err != nil {
			return err
		}
		if e == nil {
			return relgen.NewNotFoundError(table, f.pk)
		}
		return writeRows(w, relgen.Collection{e})
	default:
		rows, err := q.Find(ctx)
		if err != nil {
			return err
		}
		return writeRows(w, rows)
	}
}

// filterValue returns a list for comma separated values.
func filterValue(v string) any {
	if !strings.Contains(v, ",") {
		return v
	}
	var list []any
	for _, s := range strings.Split(v, ",") {
		list = append(list, strings.TrimSpace(s))
	}
	return list
}

func primaryKey(values []string) any {
	if len(values) == 1 {
		return values[0]
	}
	key := make([]any, len(values))
	for i, v := range values {
		key[i] = v
	}
	return key
}

func writeRows(w io.Writer, rows relgen.Collection) error {
	out := make([]map[string]any, 0, len(rows))
	for _, e := range rows {
		r, ok := e.(*relgen.Record)
		if !ok {
			return errors.New("unsupported entity type")
		}
		m := r.Map()
		for k, v := range m {
			if b, ok := v.([]byte); ok {
				m[k] = string(b)
			}
		}
		out = append(out, m)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}
