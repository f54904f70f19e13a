package server

import (
	"errors"

	"github.com/xlexi/oauth2orize/oauth2"
)

// ErrBodySupport indicates the host invoked body-reading middleware on a
// context without a parsed body.
var ErrBodySupport = errors.New("OAuth 2.0 decision handling requires body parsing, supply a parsed body on the request context")

// ErrTransactionSupport indicates decision middleware ran without a loaded
// transaction, which usually means the host forgot to mount the transaction
// loader.
var ErrTransactionSupport = errors.New("OAuth 2.0 decision handling requires a loaded transaction, mount the transaction loader first")

// ParseDecisionFunc extracts the user's decision from the request. Returning
// a nil Decision allows the request with no extensions.
type ParseDecisionFunc func(ctx *oauth2.Context) (*oauth2.Decision, error)

// DecisionOptions configures the decision middleware.
type DecisionOptions struct {
	// CancelField is the body field whose presence denies the request when
	// no parse callback is given. Defaults to "cancel".
	CancelField string

	// SessionKey namespaces the transaction map within the session.
	// Defaults to "authorize".
	SessionKey string

	// TransactionField is the request field carrying the transaction ID,
	// used by the built-in loader. Defaults to "transaction_id".
	TransactionField string

	// SkipTransactionLoad disables the built-in transaction loader; the
	// host mounts its own loader before this middleware.
	SkipTransactionLoad bool
}

func (o *DecisionOptions) cancelField() string {
	if o == nil || o.CancelField == "" {
		return "cancel"
	}
	return o.CancelField
}

func (o *DecisionOptions) sessionKey() string {
	if o == nil || o.SessionKey == "" {
		return "authorize"
	}
	return o.SessionKey
}

func (o *DecisionOptions) loaderOptions() *TransactionLoaderOptions {
	if o == nil {
		return nil
	}
	return &TransactionLoaderOptions{
		TransactionField: o.TransactionField,
		SessionKey:       o.SessionKey,
	}
}

// Decision builds the middleware applying a user's allow/deny decision to a
// loaded transaction and dispatching the response. Unless
// SkipTransactionLoad is set, the returned handler loads the transaction
// itself before processing the decision.
//
// Once response dispatch begins the transaction is removed from the session
// regardless of the outcome: a transaction is usable for exactly one decision
// resolution. Removal is keyed to the dispatch attempt, not to a successfully
// written response, so a responder that errors mid-write still consumes the
// transaction. Errors raised before dispatch starts (precondition failures,
// decision parsing) leave the session copy intact so the client can retry.
// Note that the at-most-once guarantee is only as strong as the host's
// session store: nothing serializes a duplicate submission racing the
// removal.
func (s *Server) Decision(opts *DecisionOptions, parse ParseDecisionFunc) Handler {
	cancelField := opts.cancelField()
	sessionKey := opts.sessionKey()

	handler := func(ctx *oauth2.Context) error {
		if ctx.Session == nil {
			return ErrSessionSupport
		}
		if ctx.Body == nil {
			return ErrBodySupport
		}
		if ctx.Transaction == nil {
			return ErrTransactionSupport
		}

		txn := ctx.Transaction
		txn.User = ctx.User

		var res *oauth2.Decision
		if parse != nil {
			parsed, err := parse(ctx)
			if err != nil {
				return err
			}
			res = parsed
		} else {
			_, cancelled := ctx.Body[cancelField]
			res = &oauth2.Decision{Allow: !cancelled}
		}
		if res == nil {
			res = &oauth2.Decision{Allow: true}
		}
		txn.Res = res

		respondErr := s.Respond(ctx, func() error {
			return oauth2.NewAuthorizationError("Unsupported response type: "+txn.Req.Type, "unsupported_response_type")
		})

		// The transaction is terminal once dispatch has been attempted,
		// even when the dispatch itself failed.
		if err := ctx.Session.Delete(sessionKey, txn.ID); err != nil && respondErr == nil {
			return err
		}
		return respondErr
	}

	if opts != nil && opts.SkipTransactionLoad {
		return handler
	}
	loader := s.TransactionLoader(opts.loaderOptions())
	return func(ctx *oauth2.Context) error {
		if err := loader(ctx); err != nil {
			return err
		}
		return handler(ctx)
	}
}
