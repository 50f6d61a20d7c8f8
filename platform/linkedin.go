package platform

// LinkedIn returns the profile for the LinkedIn feed.
//
// LinkedIn posts carry a stable URN in data-urn, which doubles as the
// duplicate-detection key. Ads expose "Promoted" as the age line, so the
// promoted keywords are matched against the same sub-description region.
func LinkedIn() Profile {
	return Profile{
		Name:    "linkedin",
		FeedURL: "https://www.linkedin.com/feed/",

		PostSelector: "div.feed-shared-update-v2[data-urn]",
		PostIDAttr:   "data-urn",
		LinkSelector: "a.app-aware-link[href*='/feed/update/']",

		LikeSelector:    "button.react-button__trigger, button[aria-label*='Like'], button[aria-label*='React']",
		CounterAttr:     "data-reaction-details",
		CommentSelector: "button[aria-label*='Comment'], button.comment-button",

		CommentInputSelectors: []string{
			"div.comments-comment-box__form div[contenteditable='true']",
			"div.ql-editor[contenteditable='true']",
			"div[role='textbox'][contenteditable='true']",
		},
		SubmitSelectors: []string{
			"button.comments-comment-box__submit-button--cr",
			"button.comments-comment-box__submit-button",
			"button[type='submit']",
		},
		Submit:             SubmitButton,
		SubmitAscentLevels: 5,

		ExpandSelector: "button.feed-shared-inline-show-more-text__see-more-less-toggle, button[aria-label*='see more'], span.see-more",
		ExpandKeywords: []string{"see more", "…more", "...more"},
		ExpandMatch:    MatchSubstring,

		AuthorSelectors: []string{
			"span.update-components-actor__title span[aria-hidden='true']",
			"span.update-components-actor__name",
			"span.feed-shared-actor__name",
		},
		ContentSelectors: []string{
			"div.update-components-text",
			"div.feed-shared-update-v2__description",
			"span.break-words",
		},
		AgeSelectors: []string{
			"span.update-components-actor__sub-description span[aria-hidden='true']",
			"span.feed-shared-actor__sub-description",
		},

		PromotedKeywords:       []string{"Promoted", "Sponsored"},
		PromotedSelector:       "span.update-components-actor__sub-description",
		CompanySelector:        "a.update-components-actor__meta-link[href*='/company/']",
		FriendActivitySelector: "div.update-components-header__text-view",

		// The LinkedIn variant ran its duplicate checks even when author
		// extraction came back empty.
		StrictDuplicateChecks: true,
	}
}
