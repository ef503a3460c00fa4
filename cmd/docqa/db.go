package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/usecases"
)

func dbCMD(a *app) *cobra.Command {
	db := &cobra.Command{
		Use:   "db",
		Short: "Browse the backend database",
	}

	var limit int
	tables := &cobra.Command{
		Use:   "tables [name]",
		Short: "List tables, or show the columns and sample rows of one table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			browser := usecases.NewDatabaseBrowser(a.client, limit, a.logger)
			if err := browser.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("fetching tables: %w", err)
			}
			if len(args) == 1 {
				t, ok := browser.Table(args[0])
				if !ok {
					return fmt.Errorf("table %q not found", args[0])
				}
				return printTable(cmd, t)
			}

			tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TABLE\tROWS\tCOLUMNS\tDESCRIPTION")
			for _, t := range browser.Tables() {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", t.Name, t.RowCount, len(t.Columns), t.Description)
			}
			return tw.Flush()
		},
	}
	tables.Flags().IntVar(&limit, "concurrency", usecases.DefaultDescribeLimit, "tables described in parallel")

	db.AddCommand(tables)
	return db
}

func printTable(cmd *cobra.Command, t entities.DatabaseTable) error {
	w := out(cmd)
	fmt.Fprintf(w, "%s (%d rows)\n", t.Name, t.RowCount)
	if t.Description != "" {
		fmt.Fprintln(w, t.Description)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range t.Columns {
		null := ""
		if c.Nullable {
			null = "null"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", c.Name, c.Type, null)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(t.SampleData) == 0 {
		return nil
	}

	fmt.Fprintln(w, "sample:")
	cols := t.SampleData[0].Columns()
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  "+strings.Join(cols, "\t"))
	for _, rec := range t.SampleData {
		vals := make([]string, len(cols))
		for i, c := range cols {
			vals[i] = fmt.Sprint(rec[c])
		}
		fmt.Fprintln(tw, "  "+strings.Join(vals, "\t"))
	}
	return tw.Flush()
}
