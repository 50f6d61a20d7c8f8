package platform

// Reddit returns the profile for the Reddit home feed. Upvote stands in for
// the like action.
func Reddit() Profile {
	return Profile{
		Name:    "reddit",
		FeedURL: "https://www.reddit.com/",

		PostSelector: "shreddit-post, div[data-testid='post-container']",
		PostIDAttr:   "id",
		LinkSelector: "a[slot='full-post-link'], a[data-click-id='body']",

		LikeSelector:    "button[upvote], button[aria-label='upvote'], button[aria-label='Upvote']",
		CounterAttr:     "data-vote-count",
		CommentSelector: "a[slot='comment-button'], button[aria-label*='comment']",

		CommentInputSelectors: []string{
			"shreddit-composer div[contenteditable='true']",
			"div[data-testid='comment-submission-form-richtext'] div[contenteditable='true']",
			"textarea[placeholder*='thoughts']",
		},
		SubmitSelectors: []string{
			"button[slot='submit-button']",
			"button[type='submit']",
		},
		Submit:             SubmitButton,
		SubmitAscentLevels: 6,

		ExpandSelector: "button, summary",
		ExpandKeywords: []string{"read more", "see more", "show more"},
		ExpandMatch:    MatchSubstring,

		AuthorSelectors: []string{
			"a[href^='/user/'] span",
			"a[data-testid='post_author_link']",
		},
		ContentSelectors: []string{
			"a[slot='title']",
			"div[data-post-click-location='text-body']",
			"h3[data-adclicklocation='title']",
		},
		AgeSelectors: []string{
			"time",
			"faceplate-timeago",
		},

		PromotedKeywords:       []string{"promoted", "Promoted"},
		PromotedSelector:       "span.promoted-span, shreddit-status-icons span",
		CompanySelector:        "span[data-testid='brand-affiliate-tag']",
		FriendActivitySelector: "span[data-testid='activity-attribution']",

		StrictDuplicateChecks: true,
	}
}
