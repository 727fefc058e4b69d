package shared

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify derives a URL slug from a display name: diacritics folded,
// lowercased, non-word characters stripped, whitespace collapsed to single
// hyphens.
func Slugify(name string) string {
	folded := make([]rune, 0, len(name))
	for _, r := range norm.NFD.String(name) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		folded = append(folded, r)
	}

	var b strings.Builder
	for _, r := range strings.ToLower(string(folded)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-':
			b.WriteRune('-')
		}
	}

	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}
