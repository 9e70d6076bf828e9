package conversation

import "strings"

// Mexican mobile numbers arrive as 521 + 10 digits but must be addressed as 52 + 10 digits.
const (
	legacyMobilePrefix = "521"
	canonicalPrefix    = "52"
	legacyMobileLength = 13
)

// NormalizeUserID rewrites the legacy mobile prefix to its canonical form.
// The result is used both as the session key and as the send target.
// It is idempotent: a normalized id is 12 digits long and never rewritten again.
func NormalizeUserID(from string) string {
	from = strings.TrimSpace(from)
	if len(from) != legacyMobileLength || !strings.HasPrefix(from, legacyMobilePrefix) || !isDigits(from) {
		return from
	}
	return canonicalPrefix + from[len(legacyMobilePrefix):]
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
