package server

import (
	"github.com/rs/zerolog"

	"github.com/xlexi/oauth2orize/oauth2"
	"github.com/xlexi/oauth2orize/responses"
)

// ErrorHandlerFunc encodes an error that occurred while processing ctx into a
// protocol response. A non-nil return value means the error could not
// be delivered to the client and must be escalated to the host's own error
// handling.
type ErrorHandlerFunc func(ctx *oauth2.Context, err error) error

// ErrorMode selects how the error handler delivers errors.
type ErrorMode string

const (
	// DirectMode responds with a JSON error body, as used on the token
	// endpoint.
	DirectMode ErrorMode = "direct"

	// IndirectMode responds by redirecting through the user's browser with
	// error parameters encoded into the redirect URI, as used on
	// authorization endpoints.
	IndirectMode ErrorMode = "indirect"
)

// ErrorHandlerOptions configures the error handler.
type ErrorHandlerOptions struct {
	// Mode selects direct or indirect delivery. Defaults to DirectMode.
	Mode ErrorMode

	// FragmentTypes lists the response type values that force fragment
	// encoding in indirect mode, per OAuth 2.0 Multiple Response Type
	// Encoding Practices. Defaults to ["token"].
	FragmentTypes []string

	// Modes maps response mode names to responders, overriding or extending
	// the built-in query and fragment encoders.
	Modes map[string]*oauth2.Responder

	// Logger receives the errors delivered to clients, standing in for the
	// host's application-level error event. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// ErrorHandler builds the terminal error-encoding stage for OAuth 2.0
// endpoints.
//
// In direct mode every error is rendered as a JSON body with the error's
// HTTP status (500 for unknown errors, never below 400). In indirect mode
// the error is delivered as a redirect carrying error parameters; when no
// transaction or redirect URI is available, or the resolved response mode has
// no registered encoder, the error is returned for the host to handle, since
// redirecting would be unsafe or impossible.
func ErrorHandler(opts *ErrorHandlerOptions) ErrorHandlerFunc {
	mode := DirectMode
	fragmentTypes := []string{"token"}
	modes := map[string]*oauth2.Responder{}
	logger := zerolog.Nop()

	if opts != nil {
		if opts.Mode != "" {
			mode = opts.Mode
		}
		if opts.FragmentTypes != nil {
			fragmentTypes = opts.FragmentTypes
		}
		for name, responder := range opts.Modes {
			modes[name] = responder
		}
		if opts.Logger != nil {
			logger = *opts.Logger
		}
	}
	if modes[oauth2.QueryResponseMode] == nil {
		modes[oauth2.QueryResponseMode] = responses.Query()
	}
	if modes[oauth2.FragmentResponseMode] == nil {
		modes[oauth2.FragmentResponseMode] = responses.Fragment()
	}

	switch mode {
	case DirectMode:
		return func(ctx *oauth2.Context, err error) error {
			enc := oauth2.EncodeError(err)
			status := enc.Status
			if status < 400 {
				status = 500
			}

			params := oauth2.NewParams()
			params.Set("error", enc.Code)
			if enc.Description != "" {
				params.Set("error_description", enc.Description)
			}
			if enc.URI != "" {
				params.Set("error_uri", enc.URI)
			}
			body, jsonErr := params.JSON()
			if jsonErr != nil {
				return jsonErr
			}

			ctx.Response.StatusCode = status
			ctx.Response.SetHeader("Content-Type", "application/json")
			ctx.Response.Body = body
			logger.Error().Err(err).Int("status", status).Msg("OAuth 2.0 endpoint error")
			return nil
		}

	case IndirectMode:
		return func(ctx *oauth2.Context, err error) error {
			txn := ctx.Transaction
			if txn == nil || txn.RedirectURI == "" {
				// Without a verified redirect URI the user agent cannot be
				// redirected safely; the host must display the error itself.
				return err
			}

			encMode := oauth2.QueryResponseMode
			if txn.Req != nil {
				if oauth2.NewTypeSet(txn.Req.Type).ContainsAny(fragmentTypes) {
					encMode = oauth2.FragmentResponseMode
				}
				if txn.Req.ResponseMode != "" {
					encMode = txn.Req.ResponseMode
				}
			}
			responder := modes[encMode]
			if responder == nil {
				return err
			}

			enc := oauth2.EncodeError(err)
			params := oauth2.NewParams()
			params.Set("error", enc.Code)
			if enc.Description != "" {
				params.Set("error_description", enc.Description)
			}
			if enc.URI != "" {
				params.Set("error_uri", enc.URI)
			}
			if txn.Req != nil && txn.Req.State != "" {
				params.Set("state", txn.Req.State)
			}
			logger.Error().Err(err).Str("mode", encMode).Msg("OAuth 2.0 endpoint error")
			return responder.Respond(txn, ctx.Response, params)
		}

	default:
		return func(ctx *oauth2.Context, err error) error {
			return err
		}
	}
}
