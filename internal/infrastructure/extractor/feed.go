// Package extractor normalizes LinkedIn feed markup into candidate post
// records. The markup arrives from an external extraction agent; this package
// only parses, it never fetches.
package extractor

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/AaronLPS/ai4news/internal/domain"
	"github.com/AaronLPS/ai4news/internal/ports"
)

// updateSelectors locate post containers, tried in order until one matches.
// LinkedIn has shipped several generations of feed markup.
var updateSelectors = []string{
	"[data-urn*='urn:li:activity']",
	".feed-shared-update-v2",
	".occludable-update",
}

const (
	authorSelector = ".update-components-actor__name span[aria-hidden='true'], .feed-shared-actor__name span[aria-hidden='true']"
	textSelector   = ".feed-shared-update-v2__description, .update-components-text, .feed-shared-text"
	mediaSelector  = ".feed-shared-image__image, .update-components-image img"
	linkSelector   = "a[href*='feed/update']"
)

// FeedExtractor parses activity-feed documents with goquery.
type FeedExtractor struct {
	logger *slog.Logger
}

var _ ports.Extractor = (*FeedExtractor)(nil)

// NewFeedExtractor wires an optional logger for per-candidate diagnostics.
func NewFeedExtractor(logger *slog.Logger) *FeedExtractor {
	return &FeedExtractor{logger: logger}
}

// Extract walks every post container in the document and returns one
// candidate per container. Identity resolution happens downstream; candidates
// here may carry the activity id in the data attribute, the permalink, both,
// or neither.
func (e *FeedExtractor) Extract(r io.Reader) ([]domain.CandidatePost, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse feed markup: %w", err)
	}

	var elements *goquery.Selection
	for _, selector := range updateSelectors {
		elements = doc.Find(selector)
		if elements.Length() > 0 {
			break
		}
	}

	candidates := make([]domain.CandidatePost, 0, elements.Length())
	elements.Each(func(i int, el *goquery.Selection) {
		candidates = append(candidates, parseUpdate(el))
	})

	e.debug("extracted candidates", "count", len(candidates))
	return candidates, nil
}

func parseUpdate(el *goquery.Selection) domain.CandidatePost {
	var candidate domain.CandidatePost

	candidate.DataURN, _ = el.Attr("data-urn")
	candidate.Permalink, _ = el.Find(linkSelector).First().Attr("href")

	candidate.Author = strings.TrimSpace(el.Find(authorSelector).First().Text())
	if candidate.Author == "" {
		candidate.Author = "Unknown"
	}

	candidate.Text = strings.TrimSpace(el.Find(textSelector).First().Text())

	el.Find(mediaSelector).Each(func(i int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok && src != "" {
			candidate.MediaURLs = append(candidate.MediaURLs, src)
		}
	})

	candidate.PostedAt, _ = el.Find("time").First().Attr("datetime")

	return candidate
}

func (e *FeedExtractor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
