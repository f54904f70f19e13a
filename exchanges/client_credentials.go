package exchanges

import (
	"net/url"

	"github.com/xlexi/oauth2orize/oauth2"
	"github.com/xlexi/oauth2orize/server"
)

// IssueClientCredentialsFunc issues tokens directly to an authenticated
// client, with no resource owner involved.
type IssueClientCredentialsFunc func(client any, scope []string, body url.Values) (*Issued, error)

// ClientCredentials returns the client_credentials exchange module. Panics
// when issue is nil.
func ClientCredentials(opts *Options, issue IssueClientCredentialsFunc) *server.Exchange {
	if issue == nil {
		panic("exchanges: client_credentials exchange requires an issue callback")
	}
	separators := opts.separators()

	handle := func(ctx *oauth2.Context) (server.Disposition, error) {
		if ctx.Body == nil {
			return server.Handled, server.ErrBodySupport
		}

		client := ctx.User
		scope := oauth2.SplitScope(ctx.Body.Get("scope"), separators)

		issued, err := issue(client, scope, ctx.Body)
		if err != nil {
			return server.Handled, err
		}
		if issued == nil || issued.AccessToken == "" {
			return server.Handled, oauth2.NewTokenError("Invalid client credentials", "invalid_grant")
		}
		return server.Handled, respondWithToken(ctx.Response, issued)
	}

	return &server.Exchange{Type: string(oauth2.ClientCredentialsGrant), Handle: handle}
}
