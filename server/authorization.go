package server

import (
	"errors"

	"github.com/xlexi/oauth2orize/internal/utils"
	"github.com/xlexi/oauth2orize/oauth2"
)

// ErrSessionSupport indicates the host invoked transaction-handling
// middleware on a context without session support.
var ErrSessionSupport = errors.New("OAuth 2.0 authorization requires session support, supply a session store on the request context")

// ClientAuthorization is the result of a validate callback. A nil Client
// means the request is unauthorized; RedirectURI may still be supplied in
// that case when a redirect target is already known and safe to use for
// error reporting. For authorized clients, a non-empty RedirectURI overrides
// the URI taken from the request.
type ClientAuthorization struct {
	Client      any
	RedirectURI string
}

// ValidateFunc authenticates the client named by an authorization request and
// verifies its redirect URI. The full parsed request is supplied; callbacks
// read only the fields they need.
type ValidateFunc func(req *oauth2.AuthorizeRequest) (*ClientAuthorization, error)

// ImmediateResponse is the result of an immediate callback. Allow true
// resolves the transaction in the same request without user interaction, with
// Info carrying decision extensions (for example the granted scope). Allow
// false defers the decision to the user: Info is preserved on the persisted
// transaction for the consent flow, and Locals rides along on the live
// transaction for this request only.
type ImmediateResponse struct {
	Allow  bool
	Info   map[string]any
	Locals map[string]any
}

// ImmediateFunc decides, without user interaction, whether the authorization
// request can be resolved immediately. The transaction carries the validated
// client, the authenticated user and the parsed request.
type ImmediateFunc func(txn *oauth2.Transaction) (*ImmediateResponse, error)

// AuthorizationOptions configures the authorization middleware.
type AuthorizationOptions struct {
	// SessionKey namespaces the transaction map within the session.
	// Defaults to "authorize".
	SessionKey string

	// IDLength is the length of generated transaction identifiers.
	// Defaults to 8.
	IDLength int
}

func (o *AuthorizationOptions) sessionKey() string {
	if o == nil || o.SessionKey == "" {
		return "authorize"
	}
	return o.SessionKey
}

func (o *AuthorizationOptions) idLength() int {
	if o == nil || o.IDLength <= 0 {
		return 8
	}
	return o.IDLength
}

// Authorization builds the middleware handling inbound authorization
// requests: it parses the request through the registered grant parsers,
// validates the client, optionally resolves the transaction immediately, and
// otherwise persists the transaction to the session for a later decision.
// A missing validate callback is a configuration error reported at
// construction.
func (s *Server) Authorization(opts *AuthorizationOptions, validate ValidateFunc, immediate ImmediateFunc) (Handler, error) {
	if validate == nil {
		return nil, errors.New("authorization middleware requires a validate function")
	}

	sessionKey := opts.sessionKey()
	idLength := opts.idLength()

	return func(ctx *oauth2.Context) error {
		if ctx.Session == nil {
			return ErrSessionSupport
		}

		typ := ""
		if ctx.Query != nil {
			typ = ctx.Query.Get("response_type")
		}
		if typ == "" {
			return oauth2.NewAuthorizationError("Missing required parameter: response_type", "invalid_request")
		}
		if !s.SupportsResponseType(typ) {
			return oauth2.NewAuthorizationError("Unsupported response type: "+typ, "unsupported_response_type")
		}

		areq, err := s.ParseRequest(typ, ctx)
		if err != nil {
			return err
		}

		authz, err := validate(areq)
		if err != nil {
			return err
		}
		if authz == nil || authz.Client == nil {
			// The transaction is still recorded so that indirect error
			// handling can redirect when validate supplied a known-good URI.
			var redirectURI string
			if authz != nil {
				redirectURI = authz.RedirectURI
			}
			ctx.Transaction = &oauth2.Transaction{RedirectURI: redirectURI}
			return oauth2.NewAuthorizationError("Unauthorized client", "unauthorized_client")
		}

		redirectURI := areq.RedirectURI
		if authz.RedirectURI != "" {
			redirectURI = authz.RedirectURI
		}

		serializedID, err := s.SerializeClient(authz.Client)
		if err != nil {
			return err
		}

		tid, err := utils.UID(idLength)
		if err != nil {
			return err
		}

		txn := &oauth2.Transaction{
			ID:          tid,
			Client:      authz.Client,
			User:        ctx.User,
			RedirectURI: redirectURI,
			Req:         areq,
		}
		ctx.Transaction = txn

		if immediate != nil {
			res, err := immediate(txn)
			if err != nil {
				return err
			}
			if res != nil && res.Allow {
				txn.Res = &oauth2.Decision{Allow: true, Ext: res.Info}
				txn.Locals = res.Locals
				return s.Respond(ctx, func() error {
					return oauth2.NewAuthorizationError("Unsupported response type: "+typ, "unsupported_response_type")
				})
			}
			if res != nil {
				txn.Info = res.Info
				txn.Locals = res.Locals
			}
		}

		snap := &oauth2.Snapshot{
			Protocol:    oauth2.TransactionProtocol,
			ClientID:    serializedID,
			RedirectURI: redirectURI,
			Req:         areq,
			Info:        txn.Info,
		}
		return ctx.Session.Set(sessionKey, tid, snap)
	}, nil
}
