// Package templates generates comment text from per-platform template lists.
// Templates are free text with two placeholder tokens: {author_first} (first
// name of the post author) and {comma} (a comma half the time, nothing the
// other half).
package templates

import (
	"math/rand"
	"strings"
	"sync"
)

// Context carries the per-post values available to placeholder resolution.
type Context struct {
	AuthorName string
}

// Generator produces comments for one platform.
type Generator struct {
	mu        sync.Mutex
	platform  string
	templates []string
	rng       *rand.Rand
}

// NewGenerator creates a generator for the named platform. When custom is
// empty the built-in list for that platform is used. rng may be nil, in which
// case the shared global source is used.
func NewGenerator(platform string, custom []string, rng *rand.Rand) *Generator {
	g := &Generator{platform: platform, rng: rng}
	g.SetTemplates(custom)
	return g
}

// SetTemplates replaces the template list. An empty list falls back to the
// platform defaults.
func (g *Generator) SetTemplates(custom []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(custom) > 0 {
		g.templates = append([]string(nil), custom...)
		return
	}
	g.templates = DefaultTemplates(g.platform)
}

// Templates returns a copy of the active template list.
func (g *Generator) Templates() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.templates...)
}

// Generate picks one template uniformly at random and resolves its
// placeholders for the given context.
func (g *Generator) Generate(ctx Context) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.templates) == 0 {
		return ""
	}
	tpl := g.templates[g.intn(len(g.templates))]
	return g.process(tpl, ctx)
}

// ProcessTemplate resolves placeholders in a single template. Every
// occurrence of a token is substituted with the same resolved value.
func (g *Generator) ProcessTemplate(tpl string, ctx Context) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.process(tpl, ctx)
}

func (g *Generator) process(tpl string, ctx Context) string {
	out := strings.ReplaceAll(tpl, "{author_first}", ExtractFirstName(ctx.AuthorName))

	comma := ""
	if g.intn(2) == 0 {
		comma = ","
	}
	return strings.ReplaceAll(out, "{comma}", comma)
}

func (g *Generator) intn(n int) int {
	if g.rng != nil {
		return g.rng.Intn(n)
	}
	return rand.Intn(n)
}

// ExtractFirstName returns the first whitespace-delimited token of a full
// name, or "" when the name is empty.
func ExtractFirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// DefaultTemplates returns the built-in template list for a platform. The
// generic list is returned for unknown platforms so Generate never runs dry.
func DefaultTemplates(platform string) []string {
	switch platform {
	case "linkedin":
		return []string{
			"Great insights{comma} {author_first}! Thanks for sharing.",
			"Really valuable perspective{comma} {author_first}. Appreciate the post!",
			"Thanks for putting this together{comma} {author_first} — well said.",
			"Interesting take{comma} {author_first}. Gave me something to think about.",
			"Well articulated{comma} {author_first}! Looking forward to more of your posts.",
		}
	case "facebook":
		return []string{
			"Love this{comma} {author_first}!",
			"Great post{comma} {author_first} 👍",
			"Thanks for sharing{comma} {author_first}!",
			"This made my day{comma} {author_first} 😄",
		}
	case "twitter":
		return []string{
			"Great thread{comma} {author_first}!",
			"Well said{comma} {author_first} 👏",
			"This{comma} exactly.",
			"Thanks for sharing{comma} {author_first}!",
		}
	case "instagram":
		return []string{
			"Amazing shot{comma} {author_first}! 🔥",
			"Love this{comma} {author_first} 😍",
			"Great content{comma} {author_first}!",
		}
	case "reddit":
		return []string{
			"Great point{comma} thanks for posting this.",
			"This deserves more upvotes.",
			"Solid write-up{comma} {author_first}. Appreciate the detail.",
		}
	}
	return []string{
		"Great post{comma} {author_first}!",
		"Thanks for sharing{comma} {author_first}.",
		"Really enjoyed this{comma} {author_first}!",
	}
}
