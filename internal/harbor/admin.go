package harbor

import (
	"context"
	"fmt"
	"net/http"
)

// CreateDeveloperToken mints a new developer (usage) token for the given
// admin token. Storing the token is the caller's concern; see the
// credentials package.
func (c *Client) CreateDeveloperToken(ctx context.Context, adminToken string) (string, error) {
	var data struct {
		DeveloperToken string `json:"developerToken"`
	}
	if err := c.doAdmin(ctx, http.MethodPost, "/api/admin/developer-token", nil, &data, adminToken); err != nil {
		return "", err
	}
	if data.DeveloperToken == "" {
		return "", fmt.Errorf("server returned an empty developer token")
	}
	return data.DeveloperToken, nil
}

// ListDeveloperTokens returns all developer tokens minted for the admin token.
func (c *Client) ListDeveloperTokens(ctx context.Context, adminToken string) ([]DeveloperToken, error) {
	var data struct {
		DeveloperTokens []DeveloperToken `json:"developerTokens"`
	}
	if err := c.doAdmin(ctx, http.MethodGet, "/api/admin/developer-tokens", nil, &data, adminToken); err != nil {
		return nil, err
	}
	return data.DeveloperTokens, nil
}
