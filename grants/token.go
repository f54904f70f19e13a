package grants

import (
	"github.com/xlexi/oauth2orize/oauth2"
	"github.com/xlexi/oauth2orize/server"
)

// IssueTokenFunc issues an access token for an approved implicit grant.
// Extra response parameters (for example expires_in) may be returned
// alongside the token. Returning an empty token without an error denies the
// request.
type IssueTokenFunc func(client, user any, res *oauth2.Decision) (string, map[string]any, error)

// Token returns the implicit grant module. The access token is delivered in
// the redirect URI fragment. Implicit grants involve no client
// authentication and rely entirely on redirect URI registration, which the
// host enforces in the authorization middleware's validate callback. Panics
// when issue is nil.
func Token(opts *Options, issue IssueTokenFunc) *server.Grant {
	if issue == nil {
		panic("grants: token grant requires an issue callback")
	}

	modes := opts.modes(oauth2.FragmentResponseMode)
	separators := opts.separators()

	request := func(ctx *oauth2.Context) (*oauth2.AuthorizeRequest, error) {
		return parseAuthorizeRequest(ctx, separators)
	}

	response := func(ctx *oauth2.Context) (server.Disposition, error) {
		txn := ctx.Transaction
		responder, err := resolveResponder(txn, modes, oauth2.FragmentResponseMode)
		if err != nil {
			return server.Handled, err
		}

		if !txn.Res.Allow {
			return server.Handled, responder.Respond(txn, ctx.Response, deniedParams(txn))
		}

		accessToken, extra, err := issue(txn.Client, txn.User, txn.Res)
		if err != nil {
			return server.Handled, err
		}
		if accessToken == "" {
			return server.Handled, oauth2.NewAuthorizationError("Request denied by authorization server", "access_denied")
		}

		params := oauth2.NewParams()
		params.Set("access_token", accessToken)
		for _, k := range sortedKeys(extra) {
			params.Set(k, extra[k])
		}
		params.SetDefault("token_type", "Bearer")
		if txn.Req != nil && txn.Req.State != "" {
			params.Set("state", txn.Req.State)
		}
		return server.Handled, responder.Respond(txn, ctx.Response, params)
	}

	return &server.Grant{Type: string(oauth2.TokenResponseType), Request: request, Response: response}
}
