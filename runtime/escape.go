package runtime

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Escape replaces the characters & < > and " with their HTML
// entities.
func Escape(text string) string {
	return htmlEscaper.Replace(text)
}
