// Package identity derives canonical identifiers for targets and posts from
// the ambiguous strings LinkedIn markup carries them in.
package identity

import (
	"regexp"
	"strings"

	"github.com/AaronLPS/ai4news/internal/domain"
)

var activityExpr = regexp.MustCompile(`urn:li:activity:\d+`)

// NormalizeTargetURL strips exactly one trailing path separator so that the
// two spellings of a profile URL resolve to the same registry key. The URL is
// not otherwise altered.
func NormalizeTargetURL(url string) string {
	return strings.TrimSuffix(url, "/")
}

// ActivityURL maps a target URL to the page listing its recent activity.
// Person profiles and company pages use dedicated activity paths; hashtag
// feeds (and any unrecognized type) are already the activity page.
func ActivityURL(url string, targetType domain.TargetType) string {
	url = NormalizeTargetURL(url)
	switch targetType {
	case domain.TargetPerson:
		return url + "/recent-activity/all/"
	case domain.TargetCompany:
		return url + "/posts/"
	default:
		return url
	}
}

// ExtractPostID scans candidate strings for an activity identifier and
// returns the first match, with any query string or fragment already excluded
// by the digits-only pattern. Candidates are tried in order, so callers pass
// the embedded data attribute before the permalink.
func ExtractPostID(candidates ...string) (string, bool) {
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if match := activityExpr.FindString(candidate); match != "" {
			return match, true
		}
	}
	return "", false
}

// PermalinkFor synthesizes the canonical post URL for an activity identifier.
// Used when a candidate carried an id but no usable link.
func PermalinkFor(linkedinID string) string {
	return "https://www.linkedin.com/feed/update/" + linkedinID
}
