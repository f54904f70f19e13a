package oauth2

import "fmt"

// AuthorizationError reports a failure at the authorization endpoint. Code is
// one of the OAuth 2.0 error codes defined for authorization responses, such
// as invalid_request, unauthorized_client, access_denied,
// unsupported_response_type or unsupported_response_mode.
type AuthorizationError struct {
	Description string
	Code        string
	URI         string
	Status      int
}

// NewAuthorizationError builds an AuthorizationError with the default HTTP
// status for its code: 400 for invalid_request and invalid_scope, 403
// otherwise.
func NewAuthorizationError(description, code string) *AuthorizationError {
	status := 403
	switch code {
	case "invalid_request", "invalid_scope":
		status = 400
	}
	return &AuthorizationError{Description: description, Code: code, Status: status}
}

func (e *AuthorizationError) Error() string {
	return e.Description
}

// TokenError reports a failure at the token endpoint. Code is one of the
// OAuth 2.0 error codes defined for token responses, such as invalid_request,
// invalid_grant or unsupported_grant_type.
type TokenError struct {
	Description string
	Code        string
	URI         string
	Status      int
}

// NewTokenError builds a TokenError with the default HTTP status for its
// code: 400 for invalid_request, 401 for invalid_client, 403 otherwise.
func NewTokenError(description, code string) *TokenError {
	status := 403
	switch code {
	case "invalid_request":
		status = 400
	case "invalid_client":
		status = 401
	}
	return &TokenError{Description: description, Code: code, Status: status}
}

func (e *TokenError) Error() string {
	return e.Description
}

// BadRequestError reports a missing or malformed transport-level parameter.
type BadRequestError struct {
	Description string
}

// NewBadRequestError builds a BadRequestError.
func NewBadRequestError(format string, args ...any) *BadRequestError {
	return &BadRequestError{Description: fmt.Sprintf(format, args...)}
}

func (e *BadRequestError) Error() string {
	return e.Description
}

// HTTPStatus returns the HTTP status for the error.
func (e *BadRequestError) HTTPStatus() int {
	return 400
}

// ForbiddenError reports a session or transaction integrity violation.
type ForbiddenError struct {
	Description string
}

// NewForbiddenError builds a ForbiddenError.
func NewForbiddenError(format string, args ...any) *ForbiddenError {
	return &ForbiddenError{Description: fmt.Sprintf(format, args...)}
}

func (e *ForbiddenError) Error() string {
	return e.Description
}

// HTTPStatus returns the HTTP status for the error.
func (e *ForbiddenError) HTTPStatus() int {
	return 403
}

// ErrorEncoding is the RFC 6749 wire form of a protocol error: the
// error code, an optional human-readable description and URI, and the HTTP
// status to respond with. Unknown errors encode as server_error / 500.
type ErrorEncoding struct {
	Code        string
	Description string
	URI         string
	Status      int
}

// EncodeError normalizes any error into its OAuth 2.0 wire form.
func EncodeError(err error) ErrorEncoding {
	switch e := err.(type) {
	case *AuthorizationError:
		return ErrorEncoding{Code: e.Code, Description: e.Description, URI: e.URI, Status: e.Status}
	case *TokenError:
		return ErrorEncoding{Code: e.Code, Description: e.Description, URI: e.URI, Status: e.Status}
	case *BadRequestError:
		return ErrorEncoding{Code: "server_error", Description: e.Description, Status: 400}
	case *ForbiddenError:
		return ErrorEncoding{Code: "server_error", Description: e.Description, Status: 403}
	default:
		return ErrorEncoding{Code: "server_error", Description: err.Error(), Status: 500}
	}
}
