// Package responses provides the standard redirect encodings for delivering
// authorization results to a client: query-string and fragment encoding, per
// RFC 6749 sections 4.1.2 and 4.2.2.
package responses

import (
	"errors"
	"strings"

	"github.com/xlexi/oauth2orize/oauth2"
)

// ErrNoRedirectURI is reported when a response encoding is asked to redirect
// a transaction that carries no redirect URI.
var ErrNoRedirectURI = errors.New("unable to issue redirect for OAuth 2.0 transaction")

// Query returns the query-string responder. Parameters are appended to the
// transaction's redirect URI as a query string in insertion order, replacing
// any query string already present.
func Query() *oauth2.Responder {
	return &oauth2.Responder{
		Respond: func(txn *oauth2.Transaction, resp *oauth2.Response, params *oauth2.Params) error {
			resp.Redirect(extend(redirectBase(txn), "?", params))
			return nil
		},
		Validate: validateRedirect,
	}
}

// Fragment returns the fragment responder. Parameters are appended to the
// transaction's redirect URI as a URI fragment in insertion order, replacing
// any fragment already present.
func Fragment() *oauth2.Responder {
	return &oauth2.Responder{
		Respond: func(txn *oauth2.Transaction, resp *oauth2.Response, params *oauth2.Params) error {
			resp.Redirect(extend(redirectBase(txn), "#", params))
			return nil
		},
		Validate: validateRedirect,
	}
}

func validateRedirect(txn *oauth2.Transaction) error {
	if redirectBase(txn) == "" {
		return ErrNoRedirectURI
	}
	return nil
}

func redirectBase(txn *oauth2.Transaction) string {
	if txn.Req != nil && txn.Req.RedirectURI != "" {
		return txn.Req.RedirectURI
	}
	return txn.RedirectURI
}

func extend(uri, delim string, params *oauth2.Params) string {
	if i := strings.Index(uri, delim); i >= 0 {
		uri = uri[:i]
	}
	return uri + delim + params.Encode()
}
