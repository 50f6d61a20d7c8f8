package platform

// Twitter returns the profile for the X/Twitter home timeline.
func Twitter() Profile {
	return Profile{
		Name:    "twitter",
		FeedURL: "https://x.com/home",

		PostSelector: "article[data-testid='tweet']",
		LinkSelector: "a[href*='/status/']",

		LikeSelector:    "button[data-testid='like']",
		CounterAttr:     "data-testid-count",
		CommentSelector: "button[data-testid='reply']",

		CommentInputSelectors: []string{
			"div[data-testid='tweetTextarea_0'][contenteditable='true']",
			"div[role='textbox'][contenteditable='true']",
		},
		SubmitSelectors: []string{
			"button[data-testid='tweetButtonInline']",
			"button[data-testid='tweetButton']",
		},
		Submit:             SubmitButton,
		SubmitAscentLevels: 8,

		ExpandSelector: "button[data-testid='tweet-text-show-more-link'], span",
		ExpandKeywords: []string{"show more", "show this thread"},
		ExpandMatch:    MatchSubstring,

		AuthorSelectors: []string{
			"div[data-testid='User-Name'] span span",
			"div[data-testid='User-Name'] a span",
		},
		ContentSelectors: []string{
			"div[data-testid='tweetText']",
		},
		AgeSelectors: []string{
			"time",
		},

		PromotedKeywords:       []string{"Ad", "Promoted"},
		PromotedSelector:       "div[data-testid='placementTracking'] span, span",
		CompanySelector:        "div[data-testid='User-Name'] svg[aria-label*='Verified Organization']",
		FriendActivitySelector: "div[data-testid='socialContext']",

		StrictDuplicateChecks: true,
	}
}
