package util

import (
	"fmt"
	"strings"
	"unicode"
)

// NormalizeEmail ensures emails are always lowercase and trimmed
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CityCode returns the three-letter upper-case city token used in organization codes.
// Non-letters are skipped; short names are padded with X.
func CityCode(city string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(city) {
		if b.Len() == 3 {
			break
		}
		if unicode.IsLetter(r) && r < unicode.MaxASCII {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	code := b.String()
	for len(code) < 3 {
		code += "X"
	}
	return code
}

// OrganizationCodePrefix returns the code prefix for an organization kind and city, e.g. "BB-MUM-"
func OrganizationCodePrefix(kind, city string) string {
	return fmt.Sprintf("%s-%s-", kind, CityCode(city))
}

// OrganizationCode formats the sequence as a zero-padded code, e.g. BB-MUM-001
func OrganizationCode(prefix string, seq int64) string {
	return fmt.Sprintf("%s%03d", prefix, seq)
}
