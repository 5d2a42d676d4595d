// Package sanitize cleans user-supplied free text (booking purposes, log notes)
// before it is stored and later rendered by the portal.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text strips all markup and surrounding whitespace and caps the result at max runes (0 = no cap).
func Text(s string, max int) string {
	out := strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
	if max > 0 {
		if r := []rune(out); len(r) > max {
			out = string(r[:max])
		}
	}
	return out
}
