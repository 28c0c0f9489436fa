package utils

import "strings"

// MaskEmail redacts the local part of an email address for logging.
// "alice@example.com" becomes "a***@example.com".
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
