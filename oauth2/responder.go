package oauth2

// ResponderFunc delivers response parameters for a transaction by mutating
// the response, typically as a redirect to the transaction's redirect URI.
type ResponderFunc func(txn *Transaction, resp *Response, params *Params) error

// Responder pairs a response encoding with an optional pre-dispatch check.
// Validate, when set, is run before issuing a grant response so that a
// transaction unable to carry the encoding (for example one with no redirect
// URI) is rejected before any token or code is issued.
type Responder struct {
	Respond  ResponderFunc
	Validate func(txn *Transaction) error
}
