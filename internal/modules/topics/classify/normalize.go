package classify

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldChain decomposes and drops combining marks, so "kécil" and "kecil" compare equal.
func foldChain() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Normalize lower-cases s, strips accents and replaces every rune that is not a letter,
// digit, '+' or '#' with a single space. '+' and '#' are kept so "c++" and "c#" do not
// collapse into "c".
func Normalize(s string) string {
	return strings.Join(Tokens(s), " ")
}

// Tokens is Normalize split on spaces.
func Tokens(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	folded, _, err := transform.String(foldChain(), s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#')
	})
}
