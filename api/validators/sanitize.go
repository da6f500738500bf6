package validators

import "strings"

// SanitizeString trims whitespace and truncates to maxLen bytes when maxLen > 0.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

// NormalizeEmail lower-cases and trims an email address for lookups.
func NormalizeEmail(input string) string {
	return strings.ToLower(SanitizeString(input, 320))
}
