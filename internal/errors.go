package internal

import "errors"

// ErrValidation marks caller mistakes such as a blank or malformed base
// currency code. Validation failures happen before any network call and are
// never retried.
var ErrValidation = errors.New("validation error")

// ErrProviderUnavailable marks transport failures, non-2xx replies,
// unparsable payloads, and upstream-reported failure flags. These are the
// only failures eligible for retry.
var ErrProviderUnavailable = errors.New("provider unavailable")

// BusinessError is the JSON error body served by the HTTP API.
type BusinessError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *BusinessError) Error() string { return e.Message }

func BizError(code, msg string) *BusinessError { return &BusinessError{Code: code, Message: msg} }
