package oauth2

// AuthorizeRequest is the parsed form of an inbound authorization request.
// The well-known OAuth 2.0 parameters have dedicated fields; extension
// parsers contribute additional values through Ext.
type AuthorizeRequest struct {
	// Type is the requested response_type (or grant_type for token requests
	// replayed through extensions). Multiple values are space-separated.
	Type string

	ClientID    string
	RedirectURI string

	// Scope holds the requested scope values after separator splitting.
	Scope []string

	State string

	// ResponseMode overrides the default response encoding when set.
	ResponseMode string

	// Ext carries extension parameters contributed by wildcard or
	// type-specific request parsers.
	Ext map[string]any
}

// Merge overlays other onto the request. Non-zero fields of other win, and
// extension values are merged key by key, later values overwriting earlier
// ones.
func (r *AuthorizeRequest) Merge(other *AuthorizeRequest) {
	if other == nil {
		return
	}
	if other.Type != "" {
		r.Type = other.Type
	}
	if other.ClientID != "" {
		r.ClientID = other.ClientID
	}
	if other.RedirectURI != "" {
		r.RedirectURI = other.RedirectURI
	}
	if other.Scope != nil {
		r.Scope = other.Scope
	}
	if other.State != "" {
		r.State = other.State
	}
	if other.ResponseMode != "" {
		r.ResponseMode = other.ResponseMode
	}
	if len(other.Ext) > 0 {
		if r.Ext == nil {
			r.Ext = make(map[string]any, len(other.Ext))
		}
		for k, v := range other.Ext {
			r.Ext[k] = v
		}
	}
}

// Decision is the outcome of a user's (or an immediate policy callback's)
// response to an authorization request.
type Decision struct {
	Allow bool

	// Ext carries additional decision values, such as a narrowed scope.
	Ext map[string]any
}

// Transaction is the server-side record of one in-flight authorization
// attempt.
type Transaction struct {
	// ID is a random opaque identifier. Uniqueness is probabilistic and
	// scoped to one session's transaction map.
	ID string

	// Client is the host-supplied client object produced by the validate
	// callback. It is nil when client lookup failed.
	Client any

	// User is the authenticated resource owner, set when a decision is
	// processed.
	User any

	// RedirectURI is the verified redirect target for the client. It may be
	// empty when authorization failed before a redirect URI was known.
	RedirectURI string

	Req *AuthorizeRequest
	Res *Decision

	// Info carries extension data handed from an immediate callback to the
	// consent flow when the decision is deferred to the user.
	Info map[string]any

	// Locals is ephemeral per-request data passed from an immediate callback
	// to later middleware. It is never persisted.
	Locals map[string]any
}

// Snapshot is the persisted form of a Transaction. The live client object is
// replaced with its serialized identifier, and request-scoped state (the
// transaction ID key, locals, the decision) is not included.
type Snapshot struct {
	Protocol    string
	ClientID    string
	RedirectURI string
	Req         *AuthorizeRequest
	Info        map[string]any
}
