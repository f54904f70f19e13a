// Package exchanges provides the built-in token exchange modules:
// authorization_code, client_credentials, password and refresh_token. Each
// constructor returns a server.Exchange descriptor that trades a presented
// grant for an access token through a host-supplied issue callback.
package exchanges

import (
	"sort"

	"github.com/xlexi/oauth2orize/oauth2"
)

// Issued is the outcome of an issue callback: the access token to deliver,
// an optional refresh token, and any extra response parameters (for example
// expires_in or scope). A nil Issued, or one with an empty AccessToken,
// denies the grant.
type Issued struct {
	AccessToken  string
	RefreshToken string
	Params       map[string]any
}

// Options configures an exchange module.
type Options struct {
	// ScopeSeparator lists scope separators in priority order. Defaults to
	// a single space.
	ScopeSeparator []string
}

func (o *Options) separators() []string {
	if o == nil || len(o.ScopeSeparator) == 0 {
		return []string{" "}
	}
	return o.ScopeSeparator
}

// respondWithToken writes the token endpoint success response: a JSON body
// with access_token first, cache suppression headers per RFC 6749 section
// 5.1, and token_type defaulting to "Bearer".
func respondWithToken(resp *oauth2.Response, issued *Issued) error {
	params := oauth2.NewParams()
	params.Set("access_token", issued.AccessToken)
	if issued.RefreshToken != "" {
		params.Set("refresh_token", issued.RefreshToken)
	}
	keys := make([]string, 0, len(issued.Params))
	for k := range issued.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		params.Set(k, issued.Params[k])
	}
	params.SetDefault("token_type", "Bearer")

	body, err := params.JSON()
	if err != nil {
		return err
	}
	resp.StatusCode = 200
	resp.SetHeader("Content-Type", "application/json")
	resp.SetHeader("Cache-Control", "no-store")
	resp.SetHeader("Pragma", "no-cache")
	resp.Body = body
	return nil
}
