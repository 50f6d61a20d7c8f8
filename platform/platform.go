// Package platform holds the per-platform selector profiles and skip
// policies. A Profile is plain data plus a couple of pure predicates; all
// DOM access driven by these selectors lives in the browser package.
package platform

import (
	"fmt"
	"strings"
)

// MatchMode controls how expand-control labels are matched against the
// platform's expand vocabulary.
type MatchMode int

const (
	// MatchSubstring matches case-insensitively anywhere in the label.
	MatchSubstring MatchMode = iota
	// MatchExact requires the trimmed label to equal a vocabulary entry.
	MatchExact
)

// SubmitStrategy describes how a typed comment is submitted.
type SubmitStrategy int

const (
	// SubmitButton locates a submit control near the input and clicks it.
	SubmitButton SubmitStrategy = iota
	// SubmitEnter dispatches an Enter keypress on the input surface.
	SubmitEnter
)

// Profile describes how to engage with one platform's feed.
type Profile struct {
	Name    string
	FeedURL string

	// Post discovery
	PostSelector string
	PostIDAttr   string // stable per-post identifier attribute, may be empty
	LinkSelector string // permalink anchor inside a post

	// Engagement controls
	LikeSelector    string
	CounterAttr     string // attribute marking reaction *counters*, not toggles
	CommentSelector string

	// Comment composition
	CommentInputSelectors []string
	SubmitSelectors       []string
	Submit                SubmitStrategy
	SubmitAscentLevels    int

	// "See more" expansion
	ExpandSelector string
	ExpandKeywords []string
	ExpandMatch    MatchMode

	// Extraction hints
	AuthorSelectors  []string
	ContentSelectors []string
	AgeSelectors     []string

	// Skip heuristics
	PromotedKeywords       []string
	PromotedSelector       string
	CompanySelector        string
	FriendActivitySelector string

	// When true, duplicate checks still run on whatever partial identifiers
	// extraction produced; when false an extraction failure skips them.
	StrictDuplicateChecks bool
}

// Filters is the subset of engine settings the skip policy consults.
type Filters struct {
	TimeFilterEnabled  bool
	MaxPostAgeHours    float64
	SkipSponsored      bool
	SkipFriendActivity bool
}

// PostInfo is everything extraction pulls out of one feed item.
type PostInfo struct {
	URL     string
	Author  string
	Content string

	AgeHours float64
	HasAge   bool

	Promoted       bool
	CompanyPage    bool
	FriendActivity bool
}

// ShouldSkip applies the platform skip policy to an extracted post.
// Promoted content is always skipped; the remaining rules are gated by the
// caller's filter settings.
func (p Profile) ShouldSkip(info PostInfo, f Filters) (bool, string) {
	if info.Promoted {
		return true, "promoted content"
	}
	if f.TimeFilterEnabled && info.HasAge && info.AgeHours > f.MaxPostAgeHours {
		return true, fmt.Sprintf("post age %.0fh exceeds limit %.0fh", info.AgeHours, f.MaxPostAgeHours)
	}
	if f.SkipSponsored && info.CompanyPage {
		return true, "company page"
	}
	if f.SkipFriendActivity && info.FriendActivity {
		return true, "friend activity"
	}
	return false, ""
}

// MatchesExpand reports whether a control label belongs to the platform's
// expand vocabulary.
func (p Profile) MatchesExpand(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" {
		return false
	}
	for _, kw := range p.ExpandKeywords {
		switch p.ExpandMatch {
		case MatchExact:
			if label == kw {
				return true
			}
		default:
			if strings.Contains(strings.ToLower(label), strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}

// ByName returns the profile for a platform identifier.
func ByName(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linkedin":
		return LinkedIn(), nil
	case "facebook":
		return Facebook(), nil
	case "twitter", "x":
		return Twitter(), nil
	case "instagram":
		return Instagram(), nil
	case "reddit":
		return Reddit(), nil
	}
	return Profile{}, fmt.Errorf("unknown platform %q", name)
}

// Names lists the supported platform identifiers.
func Names() []string {
	return []string{"linkedin", "facebook", "twitter", "instagram", "reddit"}
}
