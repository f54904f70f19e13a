package exchanges

import (
	"net/url"

	"github.com/xlexi/oauth2orize/oauth2"
	"github.com/xlexi/oauth2orize/server"
)

// IssuePasswordFunc exchanges resource owner password credentials for
// tokens. The credentials are typically collected by the client directly
// from the user.
type IssuePasswordFunc func(client any, username, password string, scope []string, body url.Values) (*Issued, error)

// Password returns the password exchange module. Panics when issue is nil.
func Password(opts *Options, issue IssuePasswordFunc) *server.Exchange {
	if issue == nil {
		panic("exchanges: password exchange requires an issue callback")
	}
	separators := opts.separators()

	handle := func(ctx *oauth2.Context) (server.Disposition, error) {
		if ctx.Body == nil {
			return server.Handled, server.ErrBodySupport
		}

		client := ctx.User
		username := ctx.Body.Get("username")
		password := ctx.Body.Get("password")
		scope := oauth2.SplitScope(ctx.Body.Get("scope"), separators)

		if username == "" {
			return server.Handled, oauth2.NewTokenError("Missing required parameter: username", "invalid_request")
		}
		if password == "" {
			return server.Handled, oauth2.NewTokenError("Missing required parameter: password", "invalid_request")
		}

		issued, err := issue(client, username, password, scope, ctx.Body)
		if err != nil {
			return server.Handled, err
		}
		if issued == nil || issued.AccessToken == "" {
			return server.Handled, oauth2.NewTokenError("Invalid resource owner credentials", "invalid_grant")
		}
		return server.Handled, respondWithToken(ctx.Response, issued)
	}

	return &server.Exchange{Type: string(oauth2.PasswordGrant), Handle: handle}
}
