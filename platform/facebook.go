package platform

// Facebook returns the profile for the Facebook news feed.
//
// Facebook renders no stable post id attribute on the article itself, so the
// permalink anchor is the identity source and extraction is the flakiest of
// the five platforms. Duplicate checks are skipped when extraction fails.
func Facebook() Profile {
	return Profile{
		Name:    "facebook",
		FeedURL: "https://www.facebook.com/",

		PostSelector: "div[role='feed'] > div div[role='article']",
		PostIDAttr:   "aria-posinset",
		LinkSelector: "a[href*='/posts/'], a[href*='story_fbid'], a[href*='/permalink/']",

		LikeSelector:    "div[aria-label='Like'][role='button'], span[data-testid='like-button']",
		CounterAttr:     "data-testid-reaction-count",
		CommentSelector: "div[aria-label*='comment'][role='button'], div[aria-label*='Comment'][role='button']",

		CommentInputSelectors: []string{
			"div[aria-label*='Write a comment'][contenteditable='true']",
			"div[aria-label*='Write a public comment'][contenteditable='true']",
			"div[role='textbox'][contenteditable='true']",
		},
		Submit:             SubmitEnter,
		SubmitAscentLevels: 0,

		ExpandSelector: "div[role='button']",
		ExpandKeywords: []string{"See more", "See More"},
		ExpandMatch:    MatchExact,

		AuthorSelectors: []string{
			"h3 a strong span",
			"h4 a strong span",
			"strong a span",
		},
		ContentSelectors: []string{
			"div[data-ad-preview='message']",
			"div[data-ad-comet-preview='message']",
			"div[dir='auto']",
		},
		AgeSelectors: []string{
			"a[aria-label][href*='/posts/']",
			"a[aria-label][href*='story_fbid']",
		},

		PromotedKeywords:       []string{"Sponsored", "Suggested for you"},
		PromotedSelector:       "a[aria-label='Sponsored'], span",
		CompanySelector:        "a[href*='facebook.com/pages/']",
		FriendActivitySelector: "span[data-ad-rendering-role='profile_name'] ~ span",

		StrictDuplicateChecks: false,
	}
}
