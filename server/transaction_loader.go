package server

import (
	"errors"

	"github.com/xlexi/oauth2orize/oauth2"
)

// TransactionLoaderOptions configures the transaction loader.
type TransactionLoaderOptions struct {
	// TransactionField is the request field carrying the transaction ID.
	// Defaults to "transaction_id".
	TransactionField string

	// SessionKey namespaces the transaction map within the session.
	// Defaults to "authorize".
	SessionKey string
}

func (o *TransactionLoaderOptions) transactionField() string {
	if o == nil || o.TransactionField == "" {
		return "transaction_id"
	}
	return o.TransactionField
}

func (o *TransactionLoaderOptions) sessionKey() string {
	if o == nil || o.SessionKey == "" {
		return "authorize"
	}
	return o.SessionKey
}

// TransactionLoader builds the middleware restoring a pending authorization
// transaction from the session. The transaction identifier is read from the
// query or the body; the persisted client identifier is re-deserialized into
// a live client. A client that has been invalidated since the transaction
// began causes the transaction to be removed from the session: a pending
// authorization bound to a revoked client must not remain usable.
func (s *Server) TransactionLoader(opts *TransactionLoaderOptions) Handler {
	field := opts.transactionField()
	sessionKey := opts.sessionKey()

	return func(ctx *oauth2.Context) error {
		if ctx.Session == nil {
			return ErrSessionSupport
		}

		tid := ""
		if ctx.Query != nil {
			tid = ctx.Query.Get(field)
		}
		if tid == "" && ctx.Body != nil {
			tid = ctx.Body.Get(field)
		}
		if tid == "" {
			return oauth2.NewBadRequestError("Missing required parameter: %s", field)
		}

		snap, err := ctx.Session.Get(sessionKey, tid)
		if err != nil {
			switch {
			case errors.Is(err, oauth2.ErrNoTransactions):
				return oauth2.NewForbiddenError("Unable to load OAuth 2.0 transactions from session")
			case errors.Is(err, oauth2.ErrTransactionNotFound):
				return oauth2.NewForbiddenError("Unable to load OAuth 2.0 transaction: %s", tid)
			default:
				return err
			}
		}

		client, err := s.DeserializeClient(snap.ClientID)
		if err != nil {
			return err
		}
		if client == nil {
			// The client was valid when the transaction began but has since
			// been deauthorized. Invalidate the transaction; no response is
			// sent to the client.
			if err := ctx.Session.Delete(sessionKey, tid); err != nil {
				return err
			}
			return oauth2.NewAuthorizationError("Unauthorized client", "unauthorized_client")
		}

		ctx.Transaction = &oauth2.Transaction{
			ID:          tid,
			Client:      client,
			RedirectURI: snap.RedirectURI,
			Req:         snap.Req,
			Info:        snap.Info,
		}
		return nil
	}
}
