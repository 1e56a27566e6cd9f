package model

import "time"

// RefreshBuffer is how long before ExpiresAt an access token is already
// treated as expired, so a request never races the provider's own check.
const RefreshBuffer = 5 * time.Minute

// Credential is the stored OAuth2 token set that lets the application read a
// profile's mailbox. A profile has at most one Credential.
type Credential struct {
	ID             int64
	OwnerID        string
	AccessToken    string
	RefreshToken   string
	ExpiresAt      time.Time
	MailboxAddress string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NeedsRefresh reports whether the access token must be refreshed before use
// at the given instant.
func (c Credential) NeedsRefresh(now time.Time) bool {
	return c.ExpiresAt.Before(now.Add(RefreshBuffer))
}

// TokenSet is what the provider returns from a code exchange or a refresh.
// RefreshToken may be empty on refresh; Expiry is zero when the provider did
// not report a lifetime.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}
