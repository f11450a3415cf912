package tandasdk

// ErrorResponse is the identity service's error body shape. It is used
// internally for parsing HTTP error responses; client code sees APIError.
type ErrorResponse struct {
	// Error is the machine-readable error code (e.g. "invalid_grant")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// TokenResponse is returned from POST /v1/auth/token for the password grant.
type TokenResponse struct {
	// AccessToken is the JWT access token used to authenticate API requests
	AccessToken string `json:"access_token"`

	// RefreshToken is the opaque refresh token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`

	// UserID identifies the authenticated account
	UserID string `json:"user_id"`
}

// SessionInfo is returned from GET /v1/session when the presented access
// token still names a live session.
type SessionInfo struct {
	UserID string `json:"user_id"`

	// ExpiresIn is the remaining lifetime in seconds
	ExpiresIn int `json:"expires_in"`
}

// IdentityRecord is the provider's user record. PinHash is nullable: null
// means PIN lock is not configured, the PENDING sentinel means the account
// has yet to choose one.
type IdentityRecord struct {
	ID          string  `json:"id"`
	Role        string  `json:"role"`
	DisplayName string  `json:"display_name"`
	AvatarURL   string  `json:"avatar_url,omitempty"`
	PinHash     *string `json:"pin_hash"`
}

// HealthResponse is the liveness probe body.
type HealthResponse struct {
	Status string `json:"status"`
}
