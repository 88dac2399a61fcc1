package matrix

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/custodia-labs/usersearch/internal/core/domain"
)

type profileResponse struct {
	DisplayName string `json:"displayname"`
	AvatarURL   string `json:"avatar_url"`
}

// GetProfile fetches the public profile of userID.
func (c *Client) GetProfile(ctx context.Context, userID string) (domain.UserProfile, error) {
	if !domain.IsUserID(userID) {
		return domain.UserProfile{}, fmt.Errorf("%w: %q is not a user id", domain.ErrInvalidInput, userID)
	}

	var resp profileResponse
	path := "/_matrix/client/v3/profile/" + url.PathEscape(userID)
	if err := c.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return domain.UserProfile{}, err
	}

	return domain.UserProfile{
		ID:          userID,
		DisplayName: resp.DisplayName,
		AvatarURL:   resp.AvatarURL,
	}, nil
}
