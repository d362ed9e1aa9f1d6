package domain

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Attributes is the key/value mapping that identifies a variant (e.g. {"Color": "Black"}).
type Attributes map[string]string

// Equal reports whether both mappings hold exactly the same keys with the same values.
// A nil mapping equals an empty one.
func (a Attributes) Equal(other Attributes) bool {
	if len(a) != len(other) {
		return false
	}
	for k, v := range a {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Copy returns an independent copy; nil stays nil.
func (a Attributes) Copy() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Key renders the mapping as a canonical "k=v;k=v" string sorted by key.
// Two attribute sets produce the same key only when Equal holds.
func (a Attributes) Key() string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(escapeAttr(k))
		b.WriteByte('=')
		b.WriteString(escapeAttr(a[k]))
	}
	return b.String()
}

func escapeAttr(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `;`, `\;`, `=`, `\=`)
	return r.Replace(s)
}

// NormalizeName derives the dedup form of a product name: trimmed, lowercased,
// with every character outside [a-z0-9] removed.
func NormalizeName(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, lowered)
}

// BrandKey folds a brand for case-insensitive comparison.
func BrandKey(brand string) string {
	return cases.Fold().String(strings.TrimSpace(brand))
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
