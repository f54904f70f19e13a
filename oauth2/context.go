package oauth2

import "net/url"

// Context carries the transport-level pieces of one inbound request together
// with the state accumulated while processing it. The host web layer is
// responsible for populating Query, Body, Session and User before invoking
// any middleware; a nil Query or Body signals that the host did not parse
// that part of the request, which the middleware reports as a configuration
// error rather than a fault.
type Context struct {
	// Query holds the parsed query string parameters, or nil when the host
	// performed no query parsing.
	Query url.Values

	// Body holds the parsed request body parameters, or nil when the host
	// performed no body parsing.
	Body url.Values

	// Session is the per-session transaction store supplied by the host. It
	// is nil when the host has no session support.
	Session SessionStore

	// User is the authenticated principal. On authorization endpoints this
	// is the resource owner; on the token endpoint it is the authenticated
	// OAuth 2.0 client.
	User any

	// Transaction is the in-flight authorization transaction, populated by
	// the authorization middleware or the transaction loader.
	Transaction *Transaction

	// Response collects the protocol output for the host to deliver.
	Response *Response
}

// NewContext returns a Context with an initialized Response.
func NewContext() *Context {
	return &Context{Response: NewResponse()}
}

// Response is the transport-neutral protocol output of a request: a status
// code, headers, an optional body and an optional redirect target. The host
// maps it onto its HTTP layer.
type Response struct {
	StatusCode int
	Body       string

	header map[string]string
}

// NewResponse returns an empty Response.
func NewResponse() *Response {
	return &Response{header: make(map[string]string)}
}

// SetHeader sets a response header, overwriting any previous value.
func (r *Response) SetHeader(key, value string) {
	if r.header == nil {
		r.header = make(map[string]string)
	}
	r.header[key] = value
}

// Header returns the value of a response header, or "" when unset.
func (r *Response) Header(key string) string {
	return r.header[key]
}

// Headers returns a copy of all response headers.
func (r *Response) Headers() map[string]string {
	out := make(map[string]string, len(r.header))
	for k, v := range r.header {
		out[k] = v
	}
	return out
}

// Redirect records a 302 redirect to the given location.
func (r *Response) Redirect(location string) {
	r.StatusCode = 302
	r.SetHeader("Location", location)
}
