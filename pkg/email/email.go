package email

import (
	"strings"
	"unicode"
)

// Domain returns the part after '@', lowercased, or "" when the address has
// no domain.
func Domain(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

// MatchesDomain reports whether email belongs to domain (case-insensitive).
func MatchesDomain(email, domain string) bool {
	if domain == "" {
		return false
	}
	return Domain(email) == strings.ToLower(domain)
}

// LocalPart returns the part before '@', or the whole string when there is
// no '@'. Used as the default username for social signups.
func LocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

// DeriveNameFromEmail guesses a first/last name pair from the local part of
// an address. Social providers do not always return a usable display name.
func DeriveNameFromEmail(email string) (string, string) {
	localPart := LocalPart(email)

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "User", "User"
	}

	first := capitalize(parts[0])
	last := "User"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
