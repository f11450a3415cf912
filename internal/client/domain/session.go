package domain

import "time"

// Session is the remote-issued proof of an authenticated connection. It is
// distinct from, and a precondition for, the device being unlocked.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	UserID       string    `json:"user_id"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token lifetime has passed. A session
// with no recorded expiry is assumed live; the provider is the authority
// and will reject it on the next confirmation if it is not.
func (s Session) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt)
}
