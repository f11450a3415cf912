package tandasdk

import (
	"context"
	"net/http"
)

type passwordGrantRequest struct {
	GrantType string `json:"grant_type"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	InstallID string `json:"install_id,omitempty"`
}

type updatePinRequest struct {
	PinHash string `json:"pin_hash"`
}

// PasswordGrant signs in with email and password, returning fresh tokens.
// The install ID ties the issued session to this device in the provider's
// audit records.
func (c *SDKClient) PasswordGrant(
	ctx context.Context,
	email, password, installID string,
) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/token", passwordGrantRequest{
		GrantType: "password",
		Email:     email,
		Password:  password,
		InstallID: installID,
	}, "")
	if err != nil {
		return nil, err
	}

	var token TokenResponse
	if err := decodeJSON(resp, &token, http.StatusOK); err != nil {
		return nil, err
	}
	return &token, nil
}

// CurrentSession asks the provider whether the presented access token still
// names a live session. An expired or revoked token reports (nil, nil): the
// session is simply absent, which is not a transport failure.
func (c *SDKClient) CurrentSession(ctx context.Context, accessToken string) (*SessionInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/session", nil, accessToken)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, nil
	}

	var info SessionInfo
	if err := decodeJSON(resp, &info, http.StatusOK); err != nil {
		return nil, err
	}
	return &info, nil
}

// SignOut revokes the session named by the access token. The provider
// treats revoking an already-dead session as success, so retries are safe.
func (c *SDKClient) SignOut(ctx context.Context, accessToken string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/signout", nil, accessToken)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// GetIdentity fetches a user record by id. A missing record returns
// ErrNotFound.
func (c *SDKClient) GetIdentity(
	ctx context.Context,
	accessToken, userID string,
) (*IdentityRecord, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/users/"+userID, nil, accessToken)
	if err != nil {
		return nil, err
	}

	var record IdentityRecord
	if err := decodeJSON(resp, &record, http.StatusOK); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdatePinHash writes a new PIN hash into the user's pin_hash field,
// replacing the PENDING sentinel after PIN setup.
func (c *SDKClient) UpdatePinHash(ctx context.Context, accessToken, userID, newHash string) error {
	resp, err := c.doRequest(
		ctx,
		http.MethodPatch,
		"/v1/users/"+userID+"/pin",
		updatePinRequest{PinHash: newHash},
		accessToken,
	)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
