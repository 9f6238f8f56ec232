package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AaronLPS/ai4news/internal/config"
	"github.com/AaronLPS/ai4news/internal/identity"
	"github.com/AaronLPS/ai4news/internal/infrastructure/extractor"
	"github.com/AaronLPS/ai4news/internal/usecase"
)

// NewIngestCommand ingests extraction-agent output: either one markup file
// attributed to a target, or the whole spool directory.
func NewIngestCommand(opts *RootOptions) *cobra.Command {
	var (
		targetURL string
		spool     bool
	)

	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Ingest extracted feed markup into the post store",
		Long: "Ingests candidate posts handed over by the extraction agent.\n" +
			"With a file argument and --target, the file is feed markup for that target.\n" +
			"With --spool, every pending envelope in the spool directory is consumed.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.loadConfig()
			logger := opts.logger(cfg)

			entries, err := config.LoadTargets(cfg.Targets.Path)
			if err != nil {
				return err
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ingester := usecase.NewIngester(usecase.IngestDeps{
				Registry:  store,
				Posts:     store,
				Extractor: extractor.NewFeedExtractor(logger.With("component", "extractor")),
				Logger:    logger.With("component", "ingest"),
			})

			var result usecase.IngestResult
			switch {
			case spool:
				result, err = ingester.IngestSpool(cmd.Context(), cfg.Ingest.SpoolDir, entries)
			case len(args) == 1 && targetURL != "":
				entry, ok := findEntry(entries, targetURL)
				if !ok {
					return fmt.Errorf("target %s is not configured in %s", targetURL, cfg.Targets.Path)
				}

				f, openErr := os.Open(args[0])
				if openErr != nil {
					return fmt.Errorf("open markup file: %w", openErr)
				}
				defer f.Close()

				result, err = ingester.IngestTarget(cmd.Context(), entry, f)
			default:
				return fmt.Errorf("either --spool or a markup file with --target is required")
			}
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&targetURL, "target", "", "URL of the configured target the markup belongs to")
	cmd.Flags().BoolVar(&spool, "spool", false, "consume pending envelopes from the spool directory")

	return cmd
}

func findEntry(entries []config.TargetEntry, url string) (config.TargetEntry, bool) {
	normalized := identity.NormalizeTargetURL(url)
	for _, entry := range entries {
		if identity.NormalizeTargetURL(entry.URL) == normalized {
			return entry, true
		}
	}
	return config.TargetEntry{}, false
}
