package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	markupextractor "github.com/kataras/markup-extractor"
	"github.com/kataras/markup-extractor/pkg/history"
	"github.com/kataras/markup-extractor/pkg/settings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	dbPath     string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:           "markup-extractor",
		Short:         "Extract page regions as HTML, JSX and CSS",
		Long:          "A tool to capture an element of a web page with its styles and export it as HTML + CSS, a JSX component, a Tailwind-only JSX component, inlined HTML or plain CSS",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Settings file (default "+settings.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&g.dbPath, "db", "", "History database (default "+settings.DefaultDatabasePath()+")")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "markup-extractor version %s\n", markupextractor.Version)
		},
	}

	rootCmd.AddCommand(
		newExtractCmd(g),
		newHistoryCmd(g),
		newServeCmd(g),
		newMCPCmd(g),
		newConfigCmd(g),
		versionCmd,
	)
	return rootCmd
}

func (g *globalFlags) settings() (settings.Settings, error) {
	s, _, err := settings.Load(g.configPath)
	return s, err
}

func (g *globalFlags) openHistory(s settings.Settings) (*history.Store, error) {
	path := g.dbPath
	if path == "" {
		path = settings.DefaultDatabasePath()
	}
	return history.Open(history.Config{
		Path:        path,
		MaxStored:   s.MaxStoredComponents,
		AutoCleanup: s.AutoCleanup,
	})
}

// cliLogger implements markupextractor.Logger with colored terminal output.
type cliLogger struct {
	w io.Writer
}

func (l *cliLogger) Infof(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(l.w, format+"\n", args...)
}

func (l *cliLogger) Warnf(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(l.w, "⚠ "+format+"\n", args...)
}

func (l *cliLogger) Errorf(format string, args ...any) {
	color.New(color.FgRed).Fprintf(l.w, "✗ "+format+"\n", args...)
}
