package tandasdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes the identity service returns.
const (
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeInvalidGrant   = "invalid_grant"
	ErrorCodeInvalidToken   = "invalid_token"
	ErrorCodeNotFound       = "not_found"
	ErrorCodeServerError    = "server_error"
)

// ErrNotFound reports that the requested record does not exist. A profile
// fetch hitting this is a recoverable condition for the caller, not a
// failure of the session itself.
var ErrNotFound = errors.New("tandasdk: not found")

// APIError represents an error response from the identity service.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g. "invalid_grant")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// parseErrorResponse converts a non-success HTTP response body into a typed
// error. 404s map to ErrNotFound so callers can branch with errors.Is.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        er.Error,
			Description: er.ErrorDescription,
		}
	}

	// Body was not the expected error shape; keep the status at least.
	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("unexpected response status %d", resp.StatusCode),
	}
}
