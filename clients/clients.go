// Package clients holds the client registry used by the example authorization
// server: registered OAuth 2.0 clients, their credentials and their allowed
// redirect URIs and scopes.
package clients

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/xlexi/oauth2orize/oauth2"
)

type ClientType string

const (
	ClientTypeConfidential ClientType = "confidential" // Can keep secrets (server-side apps)
	ClientTypePublic       ClientType = "public"       // Cannot keep secrets (SPAs, mobile apps)
)

type Client struct {
	ID           string     `json:"id"`
	Type         ClientType `json:"type"`
	Name         string     `json:"name"`
	SecretHash   string     `json:"-"`
	RedirectURIs []string   `json:"redirectURIs"`
	Scopes       []string   `json:"scopes"`
}

// IsPublic returns true if the client is a public client
func (c *Client) IsPublic() bool {
	return c.Type == ClientTypePublic
}

// SetSecret hashes and stores the client secret.
func (c *Client) SetSecret(secret string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.SecretHash = string(hash)
	return nil
}

// CheckSecret verifies a presented client secret against the stored hash.
func (c *Client) CheckSecret(secret string) bool {
	if c.SecretHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.SecretHash), []byte(secret)) == nil
}

// ValidRedirectURI reports whether uri is registered for the client. An empty
// uri is accepted only when exactly one URI is registered, which then serves
// as the default.
func (c *Client) ValidRedirectURI(uri string) bool {
	if uri == "" {
		return len(c.RedirectURIs) == 1
	}
	for _, registered := range c.RedirectURIs {
		if registered == uri {
			return true
		}
	}
	return false
}

// DefaultRedirectURI returns the sole registered redirect URI, or "" when the
// client has zero or several registered.
func (c *Client) DefaultRedirectURI() string {
	if len(c.RedirectURIs) == 1 {
		return c.RedirectURIs[0]
	}
	return ""
}

// HasScope checks if the client has permission for a specific scope
func (c *Client) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// ValidateScopes checks if all requested scopes are allowed for this client
func (c *Client) ValidateScopes(requested []string) error {
	for _, scope := range requested {
		if !c.HasScope(scope) {
			return ErrInvalidScope
		}
	}
	return nil
}

// ValidateScopeString checks a raw space-separated scope value.
func (c *Client) ValidateScopeString(requested string) error {
	return c.ValidateScopes(oauth2.SplitScope(requested, nil))
}
