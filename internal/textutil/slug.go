package textutil

import (
	"strings"
	"unicode"
)

// MaxSlugLength caps slugs generated for posts.
const MaxSlugLength = 60

// Streamlined System for the Romanization of Bulgarian.
var bulgarianLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ж': "zh",
	'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u", 'ф': "f",
	'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sht", 'ъ': "a", 'ь': "y",
	'ю': "yu", 'я': "ya", 'ѝ': "i",
}

// Transliterate maps Bulgarian Cyrillic letters to Latin; other runes pass
// through unchanged. Input is expected to be lowercase.
func Transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if latin, ok := bulgarianLatin[r]; ok {
			b.WriteString(latin)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Slug derives a URL-safe identifier: lowercase ASCII word characters
// separated by single hyphens, at most MaxSlugLength bytes.
func Slug(title string) string {
	src := Transliterate(strings.ToLower(title))

	var b strings.Builder
	pendingHyphen := false
	for _, r := range src {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			pendingHyphen = true
		}
	}

	slug := b.String()
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	return slug
}
