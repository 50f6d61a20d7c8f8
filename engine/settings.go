package engine

import "github.com/velvetkeys/engagekit/platform"

// Settings is the flat configuration record for one engine. It is replaced
// wholesale on every settings update; Normalize reconciles invalid
// combinations instead of rejecting them.
type Settings struct {
	// Scroll pacing: delay bounds between smart-scroll steps, milliseconds.
	ScrollSpeedMin int `json:"scroll_speed_min"`
	ScrollSpeedMax int `json:"scroll_speed_max"`

	// Action enable flags.
	ExpandPosts bool `json:"expand_posts"`
	AutoLike    bool `json:"auto_like"`
	AutoComment bool `json:"auto_comment"`

	// Probabilities in percent (0-100).
	LikeProbability    int `json:"like_probability"`
	CommentProbability int `json:"comment_probability"`

	// Per-action delays, milliseconds.
	SeeMoreDelayMs        int `json:"see_more_delay_ms"`
	LikeDelayMs           int `json:"like_delay_ms"`
	CommentDelayMs        int `json:"comment_delay_ms"`
	PostEngagementDelayMs int `json:"post_engagement_delay_ms"`

	// Platform filters.
	TimeFilterEnabled  bool    `json:"time_filter_enabled"`
	MaxPostAgeHours    float64 `json:"max_post_age_hours"`
	SkipSponsored      bool    `json:"skip_sponsored"`
	SkipFriendActivity bool    `json:"skip_friend_activity"`
}

// DefaultSettings returns the configuration a fresh engine starts with.
func DefaultSettings() Settings {
	return Settings{
		ScrollSpeedMin: 400,
		ScrollSpeedMax: 800,

		ExpandPosts: true,
		AutoLike:    true,
		AutoComment: false,

		LikeProbability:    40,
		CommentProbability: 15,

		SeeMoreDelayMs:        2000,
		LikeDelayMs:           3000,
		CommentDelayMs:        5000,
		PostEngagementDelayMs: 8000,

		TimeFilterEnabled:  false,
		MaxPostAgeHours:    72,
		SkipSponsored:      true,
		SkipFriendActivity: false,
	}
}

// Normalize reconciles invalid field combinations. A scroll range with
// min > max is resolved by raising max to min.
func (s *Settings) Normalize() {
	if s.ScrollSpeedMin > s.ScrollSpeedMax {
		s.ScrollSpeedMax = s.ScrollSpeedMin
	}
	s.LikeProbability = clampPercent(s.LikeProbability)
	s.CommentProbability = clampPercent(s.CommentProbability)
}

// Filters exposes the skip-policy subset of the settings.
func (s Settings) Filters() platform.Filters {
	return platform.Filters{
		TimeFilterEnabled:  s.TimeFilterEnabled,
		MaxPostAgeHours:    s.MaxPostAgeHours,
		SkipSponsored:      s.SkipSponsored,
		SkipFriendActivity: s.SkipFriendActivity,
	}
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
