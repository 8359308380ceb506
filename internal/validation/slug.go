// Package validation provides input validation and normalization for admin
// writes. Validators run before any data is persisted so invalid input is
// rejected early.
package validation

import (
	"regexp"
	"strings"
)

// translit maps Cyrillic letters to their Latin transliteration. Titles in
// the admin panel are predominantly Russian; slugs must stay ASCII for stable
// URLs.
var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "i", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Slugify derives a URL slug from a free-form title: Cyrillic is
// transliterated, everything else non-alphanumeric becomes a hyphen, and
// runs of hyphens collapse. Returns "" when nothing usable remains.
func Slugify(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			if tr, ok := translit[r]; ok {
				b.WriteString(tr)
			} else {
				b.WriteByte('-')
			}
		}
	}

	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}

// ValidSlug reports whether s is an acceptable explicit slug: lowercase
// ASCII letters, digits, and single hyphens, neither leading nor trailing.
func ValidSlug(s string) bool {
	return s != "" && len(s) <= 191 && slugPattern.MatchString(s)
}
