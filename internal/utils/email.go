package utils

import (
	"strings"
)

// DomainFromEmail returns the lower-cased part after the first '@'.
// Display forms such as "Name <user@host>" are unwrapped first.
func DomainFromEmail(email string) (string, bool) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", false
	}

	if strings.Contains(email, "<") && strings.Contains(email, ">") {
		startIdx := strings.LastIndex(email, "<") + 1
		endIdx := strings.LastIndex(email, ">")
		if startIdx > 0 && endIdx > startIdx {
			email = email[startIdx:endIdx]
		}
	}

	_, domain, found := strings.Cut(email, "@")
	if !found {
		return "", false
	}

	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return "", false
	}
	return domain, true
}

// IsDeliverableAddress is the minimal recipient check applied before sending.
func IsDeliverableAddress(email string) bool {
	return strings.Contains(email, "@")
}
