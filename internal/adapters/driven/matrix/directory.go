package matrix

import (
	"context"
	"net/http"

	"github.com/samber/lo"

	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/core/ports/driven"
)

// Ensure Client implements the interfaces.
var (
	_ driven.DirectoryClient = (*Client)(nil)
	_ driven.ProfileFetcher  = (*Client)(nil)
)

// maxDirectoryLimit caps the number of results requested per search.
const maxDirectoryLimit = 500

type directoryRequest struct {
	SearchTerm string `json:"search_term"`
	Limit      int    `json:"limit"`
}

type directoryUser struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

type directoryResponse struct {
	Results []directoryUser `json:"results"`
	Limited bool            `json:"limited"`
}

// Search queries the user directory. The server cannot exclude users, so
// the request is widened by the size of exclude and the excluded users are
// dropped from the response.
func (c *Client) Search(
	ctx context.Context, term string, limit int, exclude domain.ExclusionSet,
) ([]domain.UserProfile, error) {
	req := directoryRequest{
		SearchTerm: term,
		Limit:      min(limit+exclude.Len(), maxDirectoryLimit),
	}

	var resp directoryResponse
	if err := c.Do(ctx, http.MethodPost, "/_matrix/client/v3/user_directory/search", req, &resp); err != nil {
		return nil, err
	}

	users := lo.FilterMap(resp.Results, func(u directoryUser, _ int) (domain.UserProfile, bool) {
		if u.UserID == "" || exclude.Contains(u.UserID) {
			return domain.UserProfile{}, false
		}
		return domain.UserProfile{ID: u.UserID, DisplayName: u.DisplayName, AvatarURL: u.AvatarURL}, true
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}
