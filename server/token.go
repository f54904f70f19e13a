package server

import "github.com/xlexi/oauth2orize/oauth2"

// TokenOptions configures the token middleware.
type TokenOptions struct {
	// GrantTypeField is the body field carrying the grant type. Defaults to
	// "grant_type".
	GrantTypeField string
}

func (o *TokenOptions) grantTypeField() string {
	if o == nil || o.GrantTypeField == "" {
		return "grant_type"
	}
	return o.GrantTypeField
}

// Token builds the middleware handling token endpoint requests: the grant
// type is read from the body and dispatched to the registered exchange
// handlers. Errors from the exchange chain propagate unchanged.
func (s *Server) Token(opts *TokenOptions) Handler {
	field := opts.grantTypeField()

	return func(ctx *oauth2.Context) error {
		if ctx.Body == nil {
			return ErrBodySupport
		}
		grantType := ctx.Body.Get(field)
		return s.ExchangeToken(grantType, ctx, func() error {
			return oauth2.NewTokenError("Unsupported grant type: "+grantType, "unsupported_grant_type")
		})
	}
}
