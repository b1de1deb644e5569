package domain

import (
	"strings"
	"time"
)

const (
	// PlatformFacebookAds is the platform tag connected accounts are stored
	// under. Other platforms may be added by the onboarding service; this
	// core only filters on the tag.
	PlatformFacebookAds = "Facebook Ads"

	accountIDPrefix = "act_"
)

// Account is a connected ad account as persisted by the onboarding service.
// This core only reads it.
type Account struct {
	ID          int       `json:"id"`
	Platform    string    `json:"platform"`
	Kind        string    `json:"kind"`
	Token       string    `json:"-"`
	Identifier  string    `json:"identifier"`
	Name        string    `json:"name"`
	ConnectedAt time.Time `json:"connected_at"`
	Active      bool      `json:"active"`
}

// TrimAccountIdentifier strips surrounding whitespace and the platform
// prefix from a caller-supplied account identifier.
func TrimAccountIdentifier(identifier string) string {
	return strings.TrimPrefix(strings.TrimSpace(identifier), accountIDPrefix)
}

// PrefixAccountIdentifier returns the identifier in the prefixed form the
// upstream API expects in request paths.
func PrefixAccountIdentifier(identifier string) string {
	trimmed := TrimAccountIdentifier(identifier)
	return accountIDPrefix + trimmed
}

// IdentifierForms returns both forms an account may be stored under. The
// onboarding service is not consistent about the prefix, so lookups must
// accept either.
func IdentifierForms(identifier string) []string {
	trimmed := TrimAccountIdentifier(identifier)
	return []string{trimmed, accountIDPrefix + trimmed}
}
