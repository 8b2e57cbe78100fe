package main

import (
	"log/slog"

	"github.com/kataras/markup-extractor/pkg/server"
	"github.com/kataras/markup-extractor/pkg/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var (
		addr    string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the extraction and history HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.settings()
			if err != nil {
				return err
			}
			store, err := g.openHistory(s)
			if err != nil {
				return err
			}
			defer store.Close()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			svc, err := service.New(service.Config{
				Store:    store,
				Settings: s,
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			srv := server.New(svc, logger)

			color.New(color.FgCyan).Fprintf(cmd.OutOrStdout(), "🌐 Listening on http://%s\n", addr)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "127.0.0.1:8420", "Listen address")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log extraction progress")
	return cmd
}
