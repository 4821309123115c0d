package http

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input validation constants
const (
	MaxClientIDLength = 128
	MaxLocationLength = 100
	MaxMessageLength  = 4000
)

var (
	clientIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.:-]+$`)
	locationPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z\s.'-]*$`)
)

// ValidClientID checks that a client id is safe to use as a registry key
func ValidClientID(s string) bool {
	if s == "" || len(s) > MaxClientIDLength {
		return false
	}
	return clientIDPattern.MatchString(s)
}

// ValidLocationName accepts place names such as "St. Louis" or "Coeur d'Alene"
func ValidLocationName(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > MaxLocationLength {
		return false
	}
	return locationPattern.MatchString(s)
}

// SanitizeString removes null bytes and invalid UTF-8
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")

	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for _, r := range s {
			if r != utf8.RuneError {
				v = append(v, r)
			}
		}
		s = string(v)
	}
	return s
}

// TruncateString truncates s to at most maxLen bytes without splitting a rune
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
