package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
)

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrRoleNotFound       = errors.New("role not found")

	ErrSfiaCategoryNotFound = errors.New("sfia category not found")
)

// OTP errors
var (
	ErrOTPExpired  = errors.New("otp has expired")
	ErrOTPInvalid  = errors.New("invalid otp code")
	ErrOTPNotFound = errors.New("otp not found")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
	ErrTokenIDInvalid = errors.New("invalid token id")
)

// Session errors
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionExpired      = errors.New("session has expired")
	ErrSessionTypeInvalid  = errors.New("session type not allowed")
	ErrSessionTypeNotFound = errors.New("session type not found")
)

// Authorization errors
var (
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrInsufficientRole = errors.New("insufficient role permissions")
)

// ErrorOrigin names the part of a request a field error points at.
type ErrorOrigin string

const (
	OriginHeaders     ErrorOrigin = "headers"
	OriginRoutePath   ErrorOrigin = "routePath"
	OriginQueryParams ErrorOrigin = "queryParams"
	OriginBody        ErrorOrigin = "body"
)

// FieldErrors maps a dotted field path to human readable messages.
// Values are never mutated once built; With returns a copy.
type FieldErrors map[string][]string

// With returns a copy of f carrying msgs under path.
func (f FieldErrors) With(path string, msgs ...string) FieldErrors {
	out := make(FieldErrors, len(f)+1)
	for k, v := range f {
		out[k] = append([]string(nil), v...)
	}
	out[path] = append(out[path], msgs...)
	return out
}

// MarshalJSON renders a nil FieldErrors as an empty object.
func (f FieldErrors) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string][]string(f))
}

// Paths returns the field paths in lexical order.
func (f FieldErrors) Paths() []string {
	paths := make([]string, 0, len(f))
	for k := range f {
		paths = append(paths, k)
	}
	sort.Strings(paths)
	return paths
}

// ClientErrors groups field errors by origin. It serializes to the
// headersErrors/routePathErrors/queryParamsErrors/bodyErrors envelope.
type ClientErrors struct {
	HeadersErrors     FieldErrors `json:"headersErrors"`
	RoutePathErrors   FieldErrors `json:"routePathErrors"`
	QueryParamsErrors FieldErrors `json:"queryParamsErrors"`
	BodyErrors        FieldErrors `json:"bodyErrors"`
}

// NewClientErrors builds a ClientErrors value holding fields under origin.
func NewClientErrors(origin ErrorOrigin, fields FieldErrors) ClientErrors {
	return ClientErrors{}.With(origin, fields)
}

// With returns a copy of e with fields merged into origin.
func (e ClientErrors) With(origin ErrorOrigin, fields FieldErrors) ClientErrors {
	merge := func(dst FieldErrors) FieldErrors {
		out := FieldErrors{}
		for k, v := range dst {
			out = out.With(k, v...)
		}
		for k, v := range fields {
			out = out.With(k, v...)
		}
		return out
	}
	switch origin {
	case OriginHeaders:
		e.HeadersErrors = merge(e.HeadersErrors)
	case OriginRoutePath:
		e.RoutePathErrors = merge(e.RoutePathErrors)
	case OriginQueryParams:
		e.QueryParamsErrors = merge(e.QueryParamsErrors)
	default:
		e.BodyErrors = merge(e.BodyErrors)
	}
	return e
}

// HasHeaderErrors reports whether any header-origin error is present.
func (e ClientErrors) HasHeaderErrors() bool {
	return len(e.HeadersErrors) > 0
}

// ClientError is a 4xx failure caused by the caller.
type ClientError struct {
	Status  int
	Message string
	Errors  ClientErrors
	// Err is the sentinel the failure maps to, if any.
	Err error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Errors)
}

func (e *ClientError) Unwrap() error { return e.Err }

// NewClientError builds a ClientError with field errors under a single origin.
func NewClientError(status int, origin ErrorOrigin, fields FieldErrors, cause error) *ClientError {
	return &ClientError{
		Status:  status,
		Message: "Request not valid",
		Errors:  NewClientErrors(origin, fields),
		Err:     cause,
	}
}

// Unauthorized is shorthand for a 401 pointing at a header field.
func Unauthorized(path, msg string, cause error) *ClientError {
	return NewClientError(http.StatusUnauthorized, OriginHeaders, FieldErrors{}.With(path, msg), cause)
}

// ServerError is an internal failure. Its message is logged, never sent.
type ServerError struct {
	Status  int
	Message string
	Err     error
}

func (e *ServerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServerError) Unwrap() error { return e.Err }

// NewServerError builds a 500 ServerError.
func NewServerError(message string, err error) *ServerError {
	return &ServerError{Status: http.StatusInternalServerError, Message: message, Err: err}
}

// AsClientError unwraps err into a *ClientError.
func AsClientError(err error) (*ClientError, bool) {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// AsServerError unwraps err into a *ServerError.
func AsServerError(err error) (*ServerError, bool) {
	var se *ServerError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
