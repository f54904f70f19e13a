package exchanges

import (
	"net/url"

	"github.com/xlexi/oauth2orize/oauth2"
	"github.com/xlexi/oauth2orize/server"
)

// IssueAuthorizationCodeFunc exchanges an authorization code for tokens.
// client is the authenticated client, code the authorization code it
// presents, and redirectURI the redirect_uri from the token request, which
// must match the value bound to the code when it was issued. body carries
// the full request body for extensions such as PKCE code verifiers.
type IssueAuthorizationCodeFunc func(client any, code, redirectURI string, body url.Values) (*Issued, error)

// AuthorizationCode returns the authorization_code exchange module. Panics
// when issue is nil.
func AuthorizationCode(opts *Options, issue IssueAuthorizationCodeFunc) *server.Exchange {
	if issue == nil {
		panic("exchanges: authorization_code exchange requires an issue callback")
	}

	handle := func(ctx *oauth2.Context) (server.Disposition, error) {
		if ctx.Body == nil {
			return server.Handled, server.ErrBodySupport
		}

		// On the token endpoint the authenticated principal is the OAuth
		// 2.0 client itself.
		client := ctx.User
		code := ctx.Body.Get("code")
		redirectURI := ctx.Body.Get("redirect_uri")

		if code == "" {
			return server.Handled, oauth2.NewTokenError("Missing required parameter: code", "invalid_request")
		}

		issued, err := issue(client, code, redirectURI, ctx.Body)
		if err != nil {
			return server.Handled, err
		}
		if issued == nil || issued.AccessToken == "" {
			return server.Handled, oauth2.NewTokenError("Invalid authorization code", "invalid_grant")
		}
		return server.Handled, respondWithToken(ctx.Response, issued)
	}

	return &server.Exchange{Type: string(oauth2.AuthorizationCodeGrant), Handle: handle}
}
