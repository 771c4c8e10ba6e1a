package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	sqle "gopkg.in/src-d/go-sqlexpr.v0"
	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression"
)

// rootOptions holds the global flags of all commands.
type rootOptions struct {
	config string
	tables string
	debug  bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "sqlexpr",
		Short: "Compile and run SQL queries over in-memory tables",
		Long: `Compile and run SQL queries over in-memory tables.

Tables are loaded from a YAML file given with --tables. Constant
expressions are folded while queries are compiled.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.config, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().StringVarP(&opts.tables, "tables", "t", "", "YAML file with the tables to query")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log the analyzer rules applied")

	cmd.AddCommand(newQueryCommand(opts))
	cmd.AddCommand(newExplainCommand(opts))
	cmd.AddCommand(newReduceCommand(opts))

	return cmd
}

func newEngine(opts *rootOptions) (*sqle.Engine, error) {
	cfg := sqle.DefaultConfig()
	if opts.config != "" {
		var err error
		cfg, err = sqle.LoadConfig(opts.config)
		if err != nil {
			return nil, err
		}
	}
	cfg.Debug = cfg.Debug || opts.debug

	e, err := sqle.New(cfg)
	if err != nil {
		return nil, err
	}

	if opts.tables != "" {
		tables, err := loadTables(sql.NewEmptyContext(), opts.tables)
		if err != nil {
			return nil, err
		}

		for _, t := range tables {
			if err := e.AddTable(t); err != nil {
				return nil, err
			}
		}
	}

	return e, nil
}

func newQueryCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a query and print its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(opts)
			if err != nil {
				return err
			}

			schema, iter, err := e.Query(sql.NewEmptyContext(), args[0])
			if err != nil {
				return err
			}

			rows, err := sql.RowIterToRows(iter)
			if err != nil {
				return err
			}

			return printRows(cmd.OutOrStdout(), schema, rows)
		},
	}
}

func printRows(out io.Writer, schema sql.Schema, rows []sql.Row) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	names := make([]string, len(schema))
	for i, col := range schema {
		names[i] = col.Name
	}
	fmt.Fprintln(w, strings.Join(names, "\t"))

	for _, row := range rows {
		values := make([]string, len(row))
		for i, v := range row {
			values[i] = expression.FormatValue(v)
		}
		fmt.Fprintln(w, strings.Join(values, "\t"))
	}

	return w.Flush()
}

func newExplainCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <sql>",
		Short: "Print the compiled plan of a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(opts)
			if err != nil {
				return err
			}

			ctx := sql.NewEmptyContext()
			n, err := e.Prepare(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, n.String())
			if ctx.CachingDisabled() {
				fmt.Fprintln(out, "(plan not cached)")
			}
			return nil
		},
	}
}

type reduceOptions struct {
	table      string
	forceCasts bool
}

func newReduceCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &reduceOptions{}

	cmd := &cobra.Command{
		Use:   "reduce <expression>...",
		Short: "Fold the constant parts of expressions",
		Long: `Fold the constant parts of expressions.

All the expressions are reduced together. Columns are resolved against
the table given with --table.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(rootOpts)
			if err != nil {
				return err
			}

			var schema sql.Schema
			if opts.table != "" {
				t, err := e.Catalog.Table(opts.table)
				if err != nil {
					return err
				}
				schema = t.Schema()
			}

			exprs, reduced, err := e.Reduce(sql.NewEmptyContext(), args, schema, opts.forceCasts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, expr := range exprs {
				fmt.Fprintf(out, "%s : %s\n", expr, expr.Type())
			}
			if !reduced {
				fmt.Fprintln(out, "(nothing to reduce)")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.table, "table", "", "table whose columns the expressions reference")
	cmd.Flags().BoolVar(&opts.forceCasts, "force-casts", false, "keep the type of the folded expressions")

	return cmd
}
