package domain

import (
	"errors"
	"fmt"
	"time"
)

// TargetType classifies a followed LinkedIn target.
type TargetType string

const (
	TargetPerson  TargetType = "person"
	TargetCompany TargetType = "company"
	TargetHashtag TargetType = "hashtag"
)

// ValidTargetTypes lists every accepted target type, in display order.
var ValidTargetTypes = []TargetType{TargetPerson, TargetCompany, TargetHashtag}

// ParseTargetType validates a raw type string against the closed set.
func ParseTargetType(raw string) (TargetType, error) {
	for _, t := range ValidTargetTypes {
		if TargetType(raw) == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid target type %q: must be one of %v", raw, ValidTargetTypes)
}

// ErrTargetNotFound reports an insert against a target id that does not exist.
var ErrTargetNotFound = errors.New("target not found")

// Target is a followed source (person, company page, or hashtag feed).
type Target struct {
	ID        int64
	URL       string
	Type      TargetType
	Name      string
	CreatedAt time.Time
}

// CandidatePost is a raw post record handed over by the extraction side.
// DataURN and Permalink may each carry the activity identifier; neither is
// guaranteed, and a candidate with no resolvable identity is discarded.
type CandidatePost struct {
	DataURN   string
	Permalink string
	Author    string
	Text      string
	MediaURLs []string
	PostedAt  string
}

// NewPost carries everything required to store a post under a resolved identity.
type NewPost struct {
	TargetID   int64
	LinkedInID string
	Author     string
	Text       string
	URL        string
	MediaURLs  []string
	PostedAt   string
}

// StoredPost is a persisted post joined with its owning target.
type StoredPost struct {
	ID         int64
	LinkedInID string
	TargetID   int64
	Author     string
	Text       string
	URL        string
	MediaURLs  []string
	PostedAt   string
	ScrapedAt  time.Time
	TargetName string
	TargetType TargetType
	TargetURL  string
}

// InsertOutcome reports what an insert attempt did. Duplicate is a normal
// outcome, not a failure.
type InsertOutcome int

const (
	OutcomeInserted InsertOutcome = iota
	OutcomeDuplicate
)

// String implements fmt.Stringer for log output.
func (o InsertOutcome) String() string {
	if o == OutcomeDuplicate {
		return "duplicate"
	}
	return "inserted"
}
