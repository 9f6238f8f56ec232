// Package cli exposes the aggregation operations as an administrative
// command surface: target management, ingest, post queries, and digest
// composition.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AaronLPS/ai4news/internal/config"
	"github.com/AaronLPS/ai4news/internal/infrastructure/storage"
	"github.com/AaronLPS/ai4news/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the root command for the ai4news CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "ai4news",
		Short:         "LinkedIn content aggregation for weekly newsletters",
		Long:          "Ingests posts discovered by an external extraction agent, deduplicates and stores them, and composes them into HTML digests grouped by source.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewTargetsCommand(opts))
	cmd.AddCommand(NewIngestCommand(opts))
	cmd.AddCommand(NewPostsCommand(opts))
	cmd.AddCommand(NewDigestCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}

// loadConfig resolves app configuration, honoring the verbose flag.
func (o *RootOptions) loadConfig() config.Config {
	cfg := config.Load()
	if o.Verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg
}

// logger builds the slog root for one command invocation.
func (o *RootOptions) logger(cfg config.Config) *slog.Logger {
	return logging.New(cfg.Logging.Level)
}

// openStore opens the per-invocation store session. Every command opens and
// closes its own connection.
func openStore(cfg config.Config) (*storage.Store, error) {
	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", cfg.Database.Path, err)
	}
	return store, nil
}

// printJSON renders a command result for consumption by the calling agent.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
