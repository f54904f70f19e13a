package oauth2

import "strings"

// TypeSet is an order-independent set of response type values, used to match
// registered grant handlers against requested response types. A request for
// "code token" matches a handler registered for "token code".
//
// A TypeSet is immutable after construction.
type TypeSet struct {
	items []string
}

// NewTypeSet builds a TypeSet from one or more values. Each value may itself
// contain multiple space-separated types, so NewTypeSet("code token") and
// NewTypeSet("code", "token") are equivalent.
func NewTypeSet(values ...string) *TypeSet {
	var items []string
	for _, v := range values {
		for _, f := range strings.Fields(v) {
			items = append(items, f)
		}
	}
	return &TypeSet{items: items}
}

// Contains reports whether the set includes val.
func (s *TypeSet) Contains(val string) bool {
	for _, item := range s.items {
		if item == val {
			return true
		}
	}
	return false
}

// ContainsAny reports whether the set includes at least one of vals.
func (s *TypeSet) ContainsAny(vals []string) bool {
	for _, v := range vals {
		if s.Contains(v) {
			return true
		}
	}
	return false
}

// EqualTo reports whether two sets hold the same values, irrespective of
// order.
func (s *TypeSet) EqualTo(other *TypeSet) bool {
	if other == nil || len(s.items) != len(other.items) {
		return false
	}
	for _, item := range s.items {
		if !other.Contains(item) {
			return false
		}
	}
	return true
}

// String renders the set as a space-separated list in insertion order.
func (s *TypeSet) String() string {
	return strings.Join(s.items, " ")
}
