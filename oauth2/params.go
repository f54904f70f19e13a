package oauth2

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Params is an insertion-ordered list of response parameters. OAuth 2.0
// responses are sensitive to parameter ordering in practice (access_token
// first, then auxiliary values), so a plain map is not suitable.
type Params struct {
	keys   []string
	values map[string]any
}

// NewParams returns an empty parameter list.
func NewParams() *Params {
	return &Params{values: make(map[string]any)}
}

// Set appends the parameter, or overwrites its value in place when the key is
// already present.
func (p *Params) Set(key string, value any) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// SetDefault sets the parameter only when the key is not already present.
func (p *Params) SetDefault(key string, value any) {
	if _, ok := p.values[key]; !ok {
		p.Set(key, value)
	}
}

// Get returns the value for key, or nil when absent.
func (p *Params) Get(key string) any {
	return p.values[key]
}

// Has reports whether the key is present.
func (p *Params) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Len returns the number of parameters.
func (p *Params) Len() int {
	return len(p.keys)
}

// Keys returns the parameter names in insertion order.
func (p *Params) Keys() []string {
	keys := make([]string, len(p.keys))
	copy(keys, p.keys)
	return keys
}

// Encode renders the parameters as an application/x-www-form-urlencoded
// string in insertion order. Spaces are percent-encoded as %20, not "+", as
// required for redirect URI components.
func (p *Params) Encode() string {
	var b strings.Builder
	for i, key := range p.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escape(key))
		b.WriteByte('=')
		b.WriteString(escape(stringify(p.values[key])))
	}
	return b.String()
}

// JSON renders the parameters as a JSON object preserving insertion order.
func (p *Params) JSON() (string, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range p.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return "", err
		}
		v, err := json.Marshal(p.values[key])
		if err != nil {
			return "", err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.String(), nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
