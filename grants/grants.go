// Package grants provides the built-in authorization grant modules: the
// authorization code grant and the implicit (token) grant. Each constructor
// returns a server.Grant descriptor pairing a request parser with a response
// handler for its response type.
package grants

import (
	"sort"

	"github.com/xlexi/oauth2orize/oauth2"
	"github.com/xlexi/oauth2orize/responses"
)

// Options configures a grant module.
type Options struct {
	// Modes maps response mode names to responders, overriding or extending
	// the grant's default encoding.
	Modes map[string]*oauth2.Responder

	// ScopeSeparator lists scope separators in priority order. Accepting
	// several separators (for example " " then ",") strays from RFC 6749
	// but tolerates deployed client libraries that join
	// scopes with commas. Defaults to a single space.
	ScopeSeparator []string
}

func (o *Options) modes(defaultMode string) map[string]*oauth2.Responder {
	modes := map[string]*oauth2.Responder{}
	if o != nil {
		for name, responder := range o.Modes {
			modes[name] = responder
		}
	}
	if modes[defaultMode] == nil {
		switch defaultMode {
		case oauth2.QueryResponseMode:
			modes[defaultMode] = responses.Query()
		case oauth2.FragmentResponseMode:
			modes[defaultMode] = responses.Fragment()
		}
	}
	return modes
}

func (o *Options) separators() []string {
	if o == nil || len(o.ScopeSeparator) == 0 {
		return []string{" "}
	}
	return o.ScopeSeparator
}

// parseAuthorizeRequest reads the standard authorization parameters shared by
// the built-in grants.
func parseAuthorizeRequest(ctx *oauth2.Context, separators []string) (*oauth2.AuthorizeRequest, error) {
	clientID := ctx.Query.Get("client_id")
	if clientID == "" {
		return nil, oauth2.NewAuthorizationError("Missing required parameter: client_id", "invalid_request")
	}
	return &oauth2.AuthorizeRequest{
		ClientID:    clientID,
		RedirectURI: ctx.Query.Get("redirect_uri"),
		Scope:       oauth2.SplitScope(ctx.Query.Get("scope"), separators),
		State:       ctx.Query.Get("state"),
	}, nil
}

// resolveResponder picks the responder for the transaction's response mode,
// falling back to the grant's default mode, and runs its validation hook.
func resolveResponder(txn *oauth2.Transaction, modes map[string]*oauth2.Responder, defaultMode string) (*oauth2.Responder, error) {
	mode := defaultMode
	if txn.Req != nil && txn.Req.ResponseMode != "" {
		mode = txn.Req.ResponseMode
	}
	responder := modes[mode]
	if responder == nil {
		return nil, &oauth2.AuthorizationError{
			Description: "Unsupported response mode: " + mode,
			Code:        "unsupported_response_mode",
			Status:      501,
		}
	}
	if responder.Validate != nil {
		if err := responder.Validate(txn); err != nil {
			return nil, err
		}
	}
	return responder, nil
}

// deniedParams builds the redirect parameters for a denied transaction.
func deniedParams(txn *oauth2.Transaction) *oauth2.Params {
	params := oauth2.NewParams()
	params.Set("error", "access_denied")
	if txn.Req != nil && txn.Req.State != "" {
		params.Set("state", txn.Req.State)
	}
	return params
}

// sortedKeys returns the map's keys in lexical order so that response output
// is deterministic.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
