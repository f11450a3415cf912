package tandasdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the tanda-api identity service. It covers the
// operations the session core consumes: sign-in, session confirmation,
// sign-out, identity fetch and PIN hash updates.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new identity service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}
