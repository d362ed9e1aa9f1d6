// Package textutil cleans merchant-supplied text before it enters the catalog.
package textutil

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Clean strips all markup and surrounding whitespace. Entities produced by the
// policy are decoded back so "&" stays "&".
func Clean(s string) string {
	out := strict.Sanitize(s)
	out = html.UnescapeString(out)
	return strings.TrimSpace(out)
}

// CleanAll applies Clean to every element and drops the ones left empty.
func CleanAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if c := Clean(v); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// CleanMap applies Clean to keys and values; entries with an empty key are dropped.
func CleanMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if ck := Clean(k); ck != "" {
			out[ck] = Clean(v)
		}
	}
	return out
}
