package authsdk

import (
	"context"
	"net/http"
	"strings"
)

// GetProfile fetches the account behind token from GET /api/profile.
func (c *SDKClient) GetProfile(ctx context.Context, token string) (*Profile, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &ValidationError{Field: FieldToken, Reason: reasonRequired}
	}

	resp, err := c.doRequest(ctx, "profile", http.MethodGet, "/api/profile", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if err != nil {
		return nil, err
	}

	var profile Profile
	if err := decodeJSON(resp, "profile", &profile, http.StatusOK); err != nil {
		return nil, err
	}

	return &profile, nil
}
