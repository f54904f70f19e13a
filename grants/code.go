package grants

import (
	"github.com/xlexi/oauth2orize/oauth2"
	"github.com/xlexi/oauth2orize/server"
)

// IssueCodeFunc issues an authorization code for an approved transaction.
// client is the validated client, redirectURI the URI the code will be bound
// to as a verifier in the subsequent exchange, user the approving resource
// owner, res the user's decision (including any narrowed scope), and req the
// original parsed request. Returning an empty code without an error denies
// the request.
type IssueCodeFunc func(client any, redirectURI string, user any, res *oauth2.Decision, req *oauth2.AuthorizeRequest) (string, error)

// Code returns the authorization code grant module. The issued code is a
// single-use credential bound to the client and redirect URI; it should
// expire shortly after issuance (the recommended maximum lifetime is 10
// minutes). Panics when issue is nil: a grant without an issue callback is a
// programming error caught at setup.
func Code(opts *Options, issue IssueCodeFunc) *server.Grant {
	if issue == nil {
		panic("grants: code grant requires an issue callback")
	}

	modes := opts.modes(oauth2.QueryResponseMode)
	separators := opts.separators()

	request := func(ctx *oauth2.Context) (*oauth2.AuthorizeRequest, error) {
		return parseAuthorizeRequest(ctx, separators)
	}

	response := func(ctx *oauth2.Context) (server.Disposition, error) {
		txn := ctx.Transaction
		responder, err := resolveResponder(txn, modes, oauth2.QueryResponseMode)
		if err != nil {
			return server.Handled, err
		}

		if !txn.Res.Allow {
			return server.Handled, responder.Respond(txn, ctx.Response, deniedParams(txn))
		}

		// The redirect URI from the authorization request doubles as a
		// verifier: the token exchange must present the same value.
		code, err := issue(txn.Client, txn.Req.RedirectURI, txn.User, txn.Res, txn.Req)
		if err != nil {
			return server.Handled, err
		}
		if code == "" {
			return server.Handled, oauth2.NewAuthorizationError("Request denied by authorization server", "access_denied")
		}

		params := oauth2.NewParams()
		params.Set("code", code)
		if txn.Req.State != "" {
			params.Set("state", txn.Req.State)
		}
		return server.Handled, responder.Respond(txn, ctx.Response, params)
	}

	return &server.Grant{Type: string(oauth2.CodeResponseType), Request: request, Response: response}
}
