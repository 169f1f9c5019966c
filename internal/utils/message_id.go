package utils

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const nanoIdAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateTrackingID returns the opaque token that identifies one sent message in tracking URLs
func GenerateTrackingID() string {
	return uuid.NewString()
}

// GenerateMessageID formats the RFC 5322 Message-ID header for a tracking id
func GenerateMessageID(trackingID, domain string) string {
	if domain == "" {
		domain = "local"
	}
	return fmt.Sprintf("<%s@%s>", trackingID, domain)
}

func GenerateNanoIDWithPrefix(prefix string, size int) string {
	id, err := gonanoid.Generate(nanoIdAlphabet, size)
	if err != nil {
		panic(err)
	}
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
