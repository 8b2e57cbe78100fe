package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/kataras/markup-extractor/pkg/generator"
	"github.com/kataras/markup-extractor/pkg/history"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newHistoryCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage extracted components",
	}

	var (
		limit int
		saved bool
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List extracted components, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, g, func(store *history.Store) error {
				var (
					entries []history.Entry
					err     error
				)
				if saved {
					entries, err = store.ListSaved(cmd.Context())
				} else {
					entries, err = store.List(cmd.Context(), limit)
				}
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No components.")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tEXTRACTED\tELEMENT\tURL")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Time().Format(time.DateTime), e.Element, e.URL)
				}
				return tw.Flush()
			})
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum number of entries (0 = all)")
	listCmd.Flags().BoolVar(&saved, "saved", false, "List the saved collection instead")

	var (
		format string
		asJSON bool
		colors string
	)
	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, g, func(store *history.Store) error {
				c, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				colored, err := colorMode(colors).enabled(out)
				if err != nil {
					return err
				}
				write := func(text, filename string) error {
					if colored {
						text = highlight(text, filename)
					}
					_, err := fmt.Fprint(out, text)
					return err
				}
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(c)
				}
				if format != "" {
					f, err := generator.ParseFormat(format)
					if err != nil {
						return err
					}
					a, ok := c.Result.Artifacts[f]
					if !ok {
						return fmt.Errorf("component %s has no %s export", c.ID, f)
					}
					return write(a.Primary, a.Filename(c.Time()))
				}
				return write(c.Result.Report, "report.md")
			})
		},
	}
	showCmd.Flags().StringVarP(&format, "format", "F", "", "Print this export instead of the report")
	showCmd.Flags().BoolVar(&asJSON, "json", false, "Print the whole component as JSON")
	showCmd.Flags().StringVar(&colors, "color", "auto", "Syntax highlighting: auto, always or never")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete components from the history and the saved collection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, g, func(store *history.Store) error {
				for _, id := range args {
					if err := store.Delete(cmd.Context(), id); err != nil {
						return err
					}
					color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", id)
				}
				return nil
			})
		},
	}

	starCmd := &cobra.Command{
		Use:   "star <id>...",
		Short: "Copy components into the saved collection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, g, func(store *history.Store) error {
				for _, id := range args {
					if _, err := store.Star(cmd.Context(), id); err != nil {
						return err
					}
					color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "★ Saved %s\n", id)
				}
				return nil
			})
		},
	}

	var output string
	exportCmd := &cobra.Command{
		Use:   "export [id...]",
		Short: "Export components as YAML (all of the history when no id is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, g, func(store *history.Store) error {
				if output == "" {
					return store.ExportYAML(cmd.Context(), cmd.OutOrStdout(), args...)
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				if err := store.ExportYAML(cmd.Context(), f, args...); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			})
		},
	}
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")

	cmd.AddCommand(listCmd, showCmd, deleteCmd, starCmd, exportCmd)
	return cmd
}

func withStore(cmd *cobra.Command, g *globalFlags, fn func(*history.Store) error) error {
	s, err := g.settings()
	if err != nil {
		return err
	}
	store, err := g.openHistory(s)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
