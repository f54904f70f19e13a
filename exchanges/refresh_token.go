package exchanges

import (
	"net/url"

	"github.com/xlexi/oauth2orize/oauth2"
	"github.com/xlexi/oauth2orize/server"
)

// IssueRefreshTokenFunc exchanges a refresh token for a new access token,
// optionally rotating the refresh token itself.
type IssueRefreshTokenFunc func(client any, refreshToken string, scope []string, body url.Values) (*Issued, error)

// RefreshToken returns the refresh_token exchange module. Panics when issue
// is nil.
func RefreshToken(opts *Options, issue IssueRefreshTokenFunc) *server.Exchange {
	if issue == nil {
		panic("exchanges: refresh_token exchange requires an issue callback")
	}
	separators := opts.separators()

	handle := func(ctx *oauth2.Context) (server.Disposition, error) {
		if ctx.Body == nil {
			return server.Handled, server.ErrBodySupport
		}

		client := ctx.User
		refreshToken := ctx.Body.Get("refresh_token")
		scope := oauth2.SplitScope(ctx.Body.Get("scope"), separators)

		if refreshToken == "" {
			return server.Handled, oauth2.NewTokenError("Missing required parameter: refresh_token", "invalid_request")
		}

		issued, err := issue(client, refreshToken, scope, ctx.Body)
		if err != nil {
			return server.Handled, err
		}
		if issued == nil || issued.AccessToken == "" {
			return server.Handled, oauth2.NewTokenError("Invalid refresh token", "invalid_grant")
		}
		return server.Handled, respondWithToken(ctx.Response, issued)
	}

	return &server.Exchange{Type: string(oauth2.RefreshTokenGrant), Handle: handle}
}
