package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AaronLPS/ai4news/internal/newsletter"
	"github.com/AaronLPS/ai4news/internal/usecase"
)

// NewDigestCommand composes recent posts plus caller-supplied summaries into
// an HTML newsletter file.
func NewDigestCommand(opts *RootOptions) *cobra.Command {
	var (
		sinceDays     int
		summariesPath string
	)

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Render recent posts into an HTML newsletter",
		Long: "Pulls posts scraped within the window, attaches AI summaries and optional\n" +
			"translations from the annotations file (a JSON array of\n" +
			"{linkedin_id, summary, translation} records), and writes one new HTML file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.loadConfig()

			annotations, err := loadAnnotations(summariesPath)
			if err != nil {
				return err
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			digester := usecase.NewDigester(usecase.DigestDeps{
				Posts:  store,
				Writer: newsletter.NewWriter(cfg.Output.Dir),
				Log:    store,
				Logger: opts.logger(cfg).With("component", "digest"),
			})

			result, err := digester.Compose(cmd.Context(), sinceDays, annotations)
			if err != nil {
				return err
			}

			if result.AuditWarning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", result.AuditWarning)
			}

			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().IntVar(&sinceDays, "since-days", 7, "window size in days, by scrape time")
	cmd.Flags().StringVar(&summariesPath, "summaries", "", "path to the annotations JSON file")

	return cmd
}

func loadAnnotations(path string) ([]usecase.Annotation, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load annotations: %w", err)
	}

	var annotations []usecase.Annotation
	if err := json.Unmarshal(raw, &annotations); err != nil {
		return nil, fmt.Errorf("load annotations: parse %s: %w", path, err)
	}

	return annotations, nil
}
