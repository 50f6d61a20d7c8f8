package platform

// Instagram returns the profile for the Instagram home feed.
//
// Instagram's like control is an svg wrapped in the clickable parent, and
// comments go through a native textarea submitted with the adjacent Post
// button.
func Instagram() Profile {
	return Profile{
		Name:    "instagram",
		FeedURL: "https://www.instagram.com/",

		PostSelector: "main article",
		LinkSelector: "a[href*='/p/'], a[href*='/reel/']",

		LikeSelector:    "span svg[aria-label='Like'], span svg[aria-label='Unlike']",
		CounterAttr:     "data-like-count",
		CommentSelector: "span svg[aria-label='Comment']",

		CommentInputSelectors: []string{
			"textarea[aria-label*='Add a comment']",
			"form textarea",
		},
		SubmitSelectors: []string{
			"div[role='button']",
			"button[type='submit']",
		},
		Submit:             SubmitButton,
		SubmitAscentLevels: 4,

		ExpandSelector: "div[role='button'], span",
		ExpandKeywords: []string{"more", "… more"},
		ExpandMatch:    MatchSubstring,

		AuthorSelectors: []string{
			"header a span",
			"header a",
		},
		ContentSelectors: []string{
			"h1",
			"span[dir='auto']",
		},
		AgeSelectors: []string{
			"time",
		},

		PromotedKeywords:       []string{"Sponsored", "Paid partnership"},
		PromotedSelector:       "header span, span",
		CompanySelector:        "header a[href*='/explore/']",
		FriendActivitySelector: "article > div:first-child span[dir='auto']",

		StrictDuplicateChecks: false,
	}
}
