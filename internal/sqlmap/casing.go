package sqlmap

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var separatorRun = regexp.MustCompile(`[-_][a-z0-9]`)

// ToCamelCase converts a SQL identifier into a camelCase attribute name.
//
// Identifiers without '-' or '_' are treated as already cased: an all upper-case word
// is lower-cased, anything else only gets its first letter lowered. Snake and kebab
// case identifiers are lower-cased and each separator is folded into the following
// letter or digit.
func ToCamelCase(s string) string {
	if s == "" {
		return ""
	}

	if !strings.ContainsAny(s, "-_") {
		if s == strings.ToUpper(s) {
			return strings.ToLower(s)
		}
		r, size := utf8.DecodeRuneInString(s)
		return string(unicode.ToLower(r)) + s[size:]
	}

	return separatorRun.ReplaceAllStringFunc(strings.ToLower(s), func(group string) string {
		return strings.ToUpper(group[1:])
	})
}
