package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AaronLPS/ai4news/internal/domain"
	"github.com/AaronLPS/ai4news/internal/usecase"
)

// NewTargetsCommand groups target administration subcommands.
func NewTargetsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Manage followed LinkedIn targets",
	}

	cmd.AddCommand(newTargetsAddCommand(opts))
	cmd.AddCommand(newTargetsRemoveCommand(opts))
	cmd.AddCommand(newTargetsListCommand(opts))

	return cmd
}

// targetJSON is the wire shape for one target in command output.
type targetJSON struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

func toTargetJSON(t domain.Target) targetJSON {
	out := targetJSON{
		ID:   t.ID,
		URL:  t.URL,
		Type: string(t.Type),
		Name: t.Name,
	}
	if !t.CreatedAt.IsZero() {
		out.CreatedAt = t.CreatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func newTargetsAddCommand(opts *RootOptions) *cobra.Command {
	var (
		targetType string
		name       string
	)

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add or update a followed target",
		Long: fmt.Sprintf("Adds a LinkedIn target to follow and mirrors it into targets.yaml.\nType must be one of: %s.",
			joinTypes()),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.loadConfig()

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			targets := usecase.NewTargets(usecase.TargetsDeps{
				Registry:   store,
				MirrorPath: cfg.Targets.Path,
				Logger:     opts.logger(cfg).With("component", "targets"),
			})

			target, err := targets.Add(cmd.Context(), args[0], targetType, name)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), toTargetJSON(target))
		},
	}

	cmd.Flags().StringVar(&targetType, "type", "", fmt.Sprintf("target type (%s)", joinTypes()))
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.MarkFlagRequired("type")

	return cmd
}

func newTargetsRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <url>",
		Short: "Stop following a target and delete its posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.loadConfig()

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			targets := usecase.NewTargets(usecase.TargetsDeps{
				Registry:   store,
				MirrorPath: cfg.Targets.Path,
				Logger:     opts.logger(cfg).With("component", "targets"),
			})

			result, err := targets.Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newTargetsListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all followed targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.loadConfig()

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			listed, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			out := make([]targetJSON, 0, len(listed))
			for _, t := range listed {
				out = append(out, toTargetJSON(t))
			}

			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func joinTypes() string {
	parts := make([]string, 0, len(domain.ValidTargetTypes))
	for _, t := range domain.ValidTargetTypes {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ", ")
}
