package oauth2

import "errors"

var (
	// ErrNoTransactions indicates the session holds no transaction map at
	// all under the requested key. This is distinct from a lookup miss: it
	// usually means the session was cleared or never carried an
	// authorization flow.
	ErrNoTransactions = errors.New("session contains no authorization transactions")

	// ErrTransactionNotFound indicates the transaction map exists but holds
	// no entry for the requested transaction ID.
	ErrTransactionNotFound = errors.New("authorization transaction not found")
)

// SessionStore persists in-flight authorization transactions between the
// authorization request and the user's decision. An implementation is scoped
// to a single user session and is typically backed by the host's session
// layer. The key parameter namespaces the transaction map within the session
// (default "authorize"); tid is the transaction identifier.
//
// Get returns ErrNoTransactions when no transaction map exists under key, and
// ErrTransactionNotFound when the map exists but tid is absent.
type SessionStore interface {
	Get(key, tid string) (*Snapshot, error)
	Set(key, tid string, snap *Snapshot) error
	Delete(key, tid string) error
}
