package chat

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed model call so the orchestration layer can
// decide how to present and whether to offer a retry.
type ErrorKind string

const (
	// KindConfiguration covers unknown model ids, missing credentials, and
	// vendor 4xx rejections other than rate limiting. Never worth an
	// automatic retry.
	KindConfiguration ErrorKind = "configuration"

	// KindTransient covers timeouts, rate limits, and vendor 5xx failures.
	// Eligible for a caller-initiated retry; adapters never retry silently.
	KindTransient ErrorKind = "transient"

	// KindMalformed covers syntactically valid calls whose response did not
	// match the vendor's documented shape.
	KindMalformed ErrorKind = "malformed"
)

// CallError is the typed failure value returned by every adapter and by
// Registry.Call. It wraps the underlying cause for errors.Is/As inspection.
type CallError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Provider is the vendor name, empty when the model id never resolved.
	Provider string

	// Model is the model id the call was addressed to.
	Model string

	// Err is the underlying cause. Never nil.
	Err error
}

// Error implements the error interface.
func (e *CallError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("%s: model %q: %v", e.Kind, e.Model, e.Err)
	}
	return fmt.Sprintf("%s: %s/%s: %v", e.Kind, e.Provider, e.Model, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CallError) Unwrap() error { return e.Err }

// ConfigErr builds a configuration-kind CallError.
func ConfigErr(provider, model string, err error) *CallError {
	return &CallError{Kind: KindConfiguration, Provider: provider, Model: model, Err: err}
}

// TransientErr builds a transient-kind CallError.
func TransientErr(provider, model string, err error) *CallError {
	return &CallError{Kind: KindTransient, Provider: provider, Model: model, Err: err}
}

// MalformedErr builds a malformed-response CallError.
func MalformedErr(provider, model string, err error) *CallError {
	return &CallError{Kind: KindMalformed, Provider: provider, Model: model, Err: err}
}

// KindOf extracts the ErrorKind from err. Errors that are not a *CallError
// are reported as transient — an unclassified failure must stay retryable.
func KindOf(err error) ErrorKind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindTransient
}

// ClassifyStatus maps an HTTP status code from a vendor SDK error to a
// CallError with the right kind. Shared by all HTTP-backed adapters.
// A status of zero means the request never completed (timeout, DNS, dial),
// which is transient like rate limits and 5xx responses.
func ClassifyStatus(provider, model string, status int, err error) *CallError {
	if status >= 400 && status != 429 && status < 500 {
		return ConfigErr(provider, model, err)
	}
	return TransientErr(provider, model, err)
}
