// Package server implements the OAuth 2.0 authorization server engine: a
// registry of grant, exchange and client (de)serialization handlers, and the
// middleware that drives authorization transactions through their lifecycle.
// The engine owns no transport or persistence; hosts adapt it onto their web
// framework through the oauth2.Context contract.
package server

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/xlexi/oauth2orize/oauth2"
)

// Handler processes one inbound request context.
type Handler func(ctx *oauth2.Context) error

// Disposition is the result of a response or exchange handler, making chain
// control flow explicit: a handler either produced the response or defers to
// the next matching handler.
type Disposition int

const (
	// Handled indicates the handler fully produced the response; the chain
	// stops.
	Handled Disposition = iota

	// Continue defers to the next matching handler in registration order.
	Continue
)

// RequestParserFunc parses grant-specific fields out of an authorization
// request. The returned partial request is merged into the transaction's
// request, later parsers overwriting earlier values on conflict.
type RequestParserFunc func(ctx *oauth2.Context) (*oauth2.AuthorizeRequest, error)

// ResponseHandlerFunc issues the response for an authorization transaction.
type ResponseHandlerFunc func(ctx *oauth2.Context) (Disposition, error)

// ExchangeHandlerFunc processes a token request for one grant type.
type ExchangeHandlerFunc func(ctx *oauth2.Context) (Disposition, error)

// SerializeClientFunc converts a live client object into the identifier
// persisted with a transaction. Returning ok == false declines, letting the
// next registered serializer try.
type SerializeClientFunc func(client any) (id string, ok bool, err error)

// DeserializeClientFunc restores a live client object from its persisted
// identifier. Returning ok == false declines, letting the next registered
// deserializer try. Returning ok == true with a nil client states
// authoritatively that the client existed but has since been invalidated.
type DeserializeClientFunc func(id string) (client any, ok bool, err error)

// Grant describes a grant module: a request parser, a response handler, or
// both, registered for a set of response types. A Type of "*" (or "")
// registers a wildcard handler matching every request, used for cross-cutting
// concerns such as extension parameters.
type Grant struct {
	Type     string
	Request  RequestParserFunc
	Response ResponseHandlerFunc
}

// Exchange describes an exchange module registered for a single grant type.
// Unlike grants, exchange types match by exact string equality; "*" (or "")
// registers a wildcard.
type Exchange struct {
	Type   string
	Handle ExchangeHandlerFunc
}

type parserEntry struct {
	types *oauth2.TypeSet // nil matches all
	parse RequestParserFunc
}

type responderEntry struct {
	types  *oauth2.TypeSet // nil matches all
	handle ResponseHandlerFunc
}

type exchangeEntry struct {
	typ    string
	anyTyp bool
	handle ExchangeHandlerFunc
}

// Server is the registry and dispatcher at the center of the engine. All
// registration happens at startup, before request processing begins; the
// chains are read-only thereafter, which makes concurrent dispatch from
// multiple in-flight requests safe without locking.
type Server struct {
	reqParsers    []parserEntry
	resHandlers   []responderEntry
	exchanges     []exchangeEntry
	serializers   []SerializeClientFunc
	deserializers []DeserializeClientFunc

	logger zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for dispatch tracing. The default discards
// everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates an empty registry.
func NewServer(opts ...Option) *Server {
	s := &Server{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterGrant appends the grant's request parser and response handler to
// their chains. Multiple grants may be registered for the same type; all of
// them run in registration order. Returns the server for chaining.
func (s *Server) RegisterGrant(g *Grant) *Server {
	types := typeSetFor(g.Type)
	if g.Request != nil {
		s.logger.Debug().Str("type", typeLabel(g.Type)).Msg("register request parser")
		s.reqParsers = append(s.reqParsers, parserEntry{types: types, parse: g.Request})
	}
	if g.Response != nil {
		s.logger.Debug().Str("type", typeLabel(g.Type)).Msg("register response handler")
		s.resHandlers = append(s.resHandlers, responderEntry{types: types, handle: g.Response})
	}
	return s
}

// RegisterExchange appends the exchange to the exchange chain. Returns the
// server for chaining.
func (s *Server) RegisterExchange(e *Exchange) *Server {
	s.logger.Debug().Str("type", typeLabel(e.Type)).Msg("register exchange")
	s.exchanges = append(s.exchanges, exchangeEntry{
		typ:    e.Type,
		anyTyp: e.Type == "" || e.Type == "*",
		handle: e.Handle,
	})
	return s
}

// RegisterSerializer appends a client serializer to the chain.
func (s *Server) RegisterSerializer(fn SerializeClientFunc) *Server {
	s.serializers = append(s.serializers, fn)
	return s
}

// RegisterDeserializer appends a client deserializer to the chain.
func (s *Server) RegisterDeserializer(fn DeserializeClientFunc) *Server {
	s.deserializers = append(s.deserializers, fn)
	return s
}

// SupportsResponseType reports whether any registered request parser,
// wildcard included, matches the response type.
func (s *Server) SupportsResponseType(typ string) bool {
	requested := oauth2.NewTypeSet(typ)
	for _, entry := range s.reqParsers {
		if entry.types == nil || entry.types.EqualTo(requested) {
			return true
		}
	}
	return false
}

// ParseRequest builds an authorization request by running every request
// parser whose type set is nil or equal to the requested type, in
// registration order, merging each partial result into the accumulator.
// Parsers run strictly sequentially; the first error aborts the chain. A type
// with no matching parser yields a request holding only the type, which is
// not an error: support is the caller's concern, checked separately via
// SupportsResponseType.
func (s *Server) ParseRequest(typ string, ctx *oauth2.Context) (*oauth2.AuthorizeRequest, error) {
	requested := oauth2.NewTypeSet(typ)
	areq := &oauth2.AuthorizeRequest{Type: typ}

	for _, entry := range s.reqParsers {
		if entry.types != nil && !entry.types.EqualTo(requested) {
			continue
		}
		s.logger.Debug().Str("type", typ).Msg("parse authorization request")
		partial, err := entry.parse(ctx)
		if err != nil {
			return nil, err
		}
		areq.Merge(partial)
	}
	return areq, nil
}

// Respond dispatches the transaction on ctx to the response handlers whose
// type set is nil or equal to the transaction's requested type, in
// registration order. A handler returning Handled terminates the chain; when
// every matching handler continues, or none matches, notHandled runs.
func (s *Server) Respond(ctx *oauth2.Context, notHandled func() error) error {
	requested := oauth2.NewTypeSet(ctx.Transaction.Req.Type)
	for _, entry := range s.resHandlers {
		if entry.types != nil && !entry.types.EqualTo(requested) {
			continue
		}
		s.logger.Debug().Str("type", ctx.Transaction.Req.Type).Msg("respond to authorization transaction")
		disposition, err := entry.handle(ctx)
		if err != nil {
			return err
		}
		if disposition == Handled {
			return nil
		}
	}
	return notHandled()
}

// ExchangeToken dispatches a token request to the exchange handlers whose
// type equals the grant type exactly, wildcards included, in registration
// order, under the same continuation contract as Respond.
func (s *Server) ExchangeToken(typ string, ctx *oauth2.Context, notHandled func() error) error {
	for _, entry := range s.exchanges {
		if !entry.anyTyp && entry.typ != typ {
			continue
		}
		s.logger.Debug().Str("type", typ).Msg("exchange grant for token")
		disposition, err := entry.handle(ctx)
		if err != nil {
			return err
		}
		if disposition == Handled {
			return nil
		}
	}
	return notHandled()
}

// SerializeClient walks the serializer chain in order; the first serializer
// that does not decline wins. Exhausting the chain is a configuration error.
func (s *Server) SerializeClient(client any) (string, error) {
	for _, fn := range s.serializers {
		id, ok, err := fn(client)
		if err != nil {
			return "", err
		}
		if ok {
			return id, nil
		}
	}
	return "", errors.New("failed to serialize client, register a serialization function using RegisterSerializer")
}

// DeserializeClient walks the deserializer chain in order; the first
// deserializer that does not decline wins. A nil client with a nil error
// states that a once-valid client has been invalidated since the transaction
// began. Exhausting the chain is a configuration error.
func (s *Server) DeserializeClient(id string) (any, error) {
	for _, fn := range s.deserializers {
		client, ok, err := fn(id)
		if err != nil {
			return nil, err
		}
		if ok {
			return client, nil
		}
	}
	return nil, errors.New("failed to deserialize client, register a deserialization function using RegisterDeserializer")
}

func typeSetFor(typ string) *oauth2.TypeSet {
	if typ == "" || typ == "*" {
		return nil
	}
	return oauth2.NewTypeSet(typ)
}

func typeLabel(typ string) string {
	if typ == "" || typ == "*" {
		return "*"
	}
	return typ
}
