package matrix

import (
	"context"
	"net/http"
	"net/url"
)

// OpenIDToken is a short-lived token a third party can use to verify the
// user's identity with the homeserver.
type OpenIDToken struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	MatrixServerName string `json:"matrix_server_name"`
	ExpiresIn        int    `json:"expires_in"`
}

// WhoAmI returns the user id the access token belongs to.
func (c *Client) WhoAmI(ctx context.Context) (string, error) {
	var resp struct {
		UserID string `json:"user_id"`
	}
	if err := c.Do(ctx, http.MethodGet, "/_matrix/client/v3/account/whoami", nil, &resp); err != nil {
		return "", err
	}
	return resp.UserID, nil
}

// RequestOpenIDToken asks the homeserver for an OpenID token for the
// current user.
func (c *Client) RequestOpenIDToken(ctx context.Context) (*OpenIDToken, error) {
	userID, err := c.WhoAmI(ctx)
	if err != nil {
		return nil, err
	}

	var token OpenIDToken
	path := "/_matrix/client/v3/user/" + url.PathEscape(userID) + "/openid/request_token"
	if err := c.Do(ctx, http.MethodPost, path, struct{}{}, &token); err != nil {
		return nil, err
	}
	return &token, nil
}
