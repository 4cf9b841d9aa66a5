// AngelaMos | 2026
// sanitize.go

package core

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var embedSrc = regexp.MustCompile(
	`^https://(www\.youtube(-nocookie)?\.com/embed/|open\.spotify\.com/embed/)[A-Za-z0-9_/?=&.-]+$`,
)

// Sanitizer cleans user-authored HTML. Rich text keeps the editor's
// formatting, images and YouTube/Spotify embeds; plain text keeps nothing.
type Sanitizer struct {
	rich  *bluemonday.Policy
	plain *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	rich := bluemonday.UGCPolicy()
	rich.AllowAttrs("class").Matching(
		regexp.MustCompile(`^[A-Za-z0-9 _-]+$`),
	).Globally()
	rich.AllowAttrs("data-youtube-video", "data-spotify-embed").OnElements("div")
	rich.AllowAttrs("src").Matching(embedSrc).OnElements("iframe")
	rich.AllowAttrs(
		"width",
		"height",
		"frameborder",
		"allow",
		"allowfullscreen",
	).OnElements("iframe")
	rich.AllowElements("mark", "u", "s")

	return &Sanitizer{
		rich:  rich,
		plain: bluemonday.StrictPolicy(),
	}
}

func (s *Sanitizer) HTML(input string) string {
	return s.rich.Sanitize(input)
}

// Text strips all markup and returns the remaining text unescaped.
func (s *Sanitizer) Text(input string) string {
	return strings.TrimSpace(html.UnescapeString(s.plain.Sanitize(input)))
}
