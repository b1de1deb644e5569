package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is a platform user known to the onboarding service. Read-only input
// to the ingestion core.
type User struct {
	ID         int       `json:"id"`
	Username   string    `json:"username"`
	ExternalID string    `json:"external_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserAccountLink is one (user, ad account) association, the unit of work
// for the periodic sync.
type UserAccountLink struct {
	UserID            int    `json:"user_id"`
	ExternalUserID    string `json:"external_user_id"`
	AccountID         int    `json:"account_id"`
	AccountIdentifier string `json:"account_identifier"`
	Platform          string `json:"platform"`
}

// Claims is the JWT payload issued at login and validated by the auth
// middleware.
type Claims struct {
	Subject string `json:"sub_name"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}
