// Package oauth2 defines the protocol-level data model shared by the
// authorization server toolkit: transactions, parsed authorization requests,
// user decisions, response encoding primitives, and the OAuth 2.0 error
// taxonomy. It contains no transport or storage logic; hosts supply those
// through the Context and SessionStore contracts.
package oauth2

// TransactionProtocol tags persisted transaction snapshots so that future
// protocol revisions can be discriminated when reloading from a session.
const TransactionProtocol = "oauth2"

// ResponseType represents the OAuth 2.0 response type requested at the
// authorization endpoint.
type ResponseType string

const (
	// CodeResponseType requests an authorization code grant.
	CodeResponseType ResponseType = "code"

	// TokenResponseType requests an implicit grant.
	TokenResponseType ResponseType = "token"
)

// GrantType represents the OAuth 2.0 grant type presented at the token
// endpoint.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	AuthorizationCodeGrant GrantType = "authorization_code"

	// ClientCredentialsGrant allows machine-to-machine authentication.
	ClientCredentialsGrant GrantType = "client_credentials"

	// PasswordGrant exchanges resource owner credentials for tokens.
	PasswordGrant GrantType = "password"

	// RefreshTokenGrant exchanges a refresh token for new tokens.
	RefreshTokenGrant GrantType = "refresh_token"
)

// ResponseMode names the encoding used to deliver authorization results to
// the client via redirect.
const (
	// QueryResponseMode returns parameters in the redirect URI query string.
	QueryResponseMode = "query"

	// FragmentResponseMode returns parameters in the redirect URI fragment.
	FragmentResponseMode = "fragment"
)
