package main

import (
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/kataras/markup-extractor/pkg/mcptools"
	"github.com/kataras/markup-extractor/pkg/service"
)

func newMCPCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the extraction tools over MCP on stdin/stdout",
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

			// stdout carries the protocol.
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			svc, err := service.New(service.Config{
				Store:    store,
				Settings: s,
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			return mcptools.NewServer(svc).Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
