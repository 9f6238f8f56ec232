package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/AaronLPS/ai4news/internal/domain"
)

// postJSON is the wire shape for one stored post in command output. It
// matches what the digest-consumption side expects to annotate.
type postJSON struct {
	LinkedInID string   `json:"linkedin_id"`
	Author     string   `json:"author"`
	Text       string   `json:"text"`
	URL        string   `json:"url"`
	MediaURLs  []string `json:"media_urls"`
	PostedAt   string   `json:"posted_at"`
	ScrapedAt  string   `json:"scraped_at"`
	TargetName string   `json:"target_name"`
	TargetType string   `json:"target_type"`
	TargetURL  string   `json:"target_url"`
}

func toPostJSON(p domain.StoredPost) postJSON {
	return postJSON{
		LinkedInID: p.LinkedInID,
		Author:     p.Author,
		Text:       p.Text,
		URL:        p.URL,
		MediaURLs:  p.MediaURLs,
		PostedAt:   p.PostedAt,
		ScrapedAt:  p.ScrapedAt.UTC().Format(time.RFC3339),
		TargetName: p.TargetName,
		TargetType: string(p.TargetType),
		TargetURL:  p.TargetURL,
	}
}

// NewPostsCommand lists recently scraped posts, newest first.
func NewPostsCommand(opts *RootOptions) *cobra.Command {
	var sinceDays int

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List posts scraped within the window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.loadConfig()

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			posts, err := store.QueryRecent(cmd.Context(), sinceDays)
			if err != nil {
				return err
			}

			out := make([]postJSON, 0, len(posts))
			for _, p := range posts {
				out = append(out, toPostJSON(p))
			}

			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().IntVar(&sinceDays, "since-days", 7, "window size in days, by scrape time")

	return cmd
}
