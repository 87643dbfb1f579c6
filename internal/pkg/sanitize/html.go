// Package sanitize escapes user-supplied text before it is written into a
// response body.
//
// Escape must be applied exactly once, at the response boundary. Stored
// values stay raw; escaping twice turns "&amp;" into "&amp;amp;".
package sanitize

import "strings"

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// Escape replaces the HTML-significant characters & < > " ' with their
// entity forms in a single left-to-right pass.
func Escape(s string) string {
	return htmlReplacer.Replace(s)
}

// EscapeAll escapes every element of ss into a new slice.
func EscapeAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = Escape(s)
	}
	return out
}
