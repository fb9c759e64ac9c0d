package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every gateway call when the caller sets no deadline.
const DefaultTimeout = 15 * time.Second

// SDKClient is a client for the Newsick auth gateway.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// ValidateLocally makes Login and Register check credentials before
	// sending them, returning a *ValidationError without touching the
	// network. Turn it off to exercise the gateway's own validation.
	// Default: true
	ValidateLocally bool
}

// NewSDKClient creates a new gateway client with local validation enabled.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		ValidateLocally: true,
	}
}
