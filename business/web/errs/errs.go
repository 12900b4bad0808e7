// Package errs maps ledger errors onto the responses the API sends back.
package errs

import "errors"

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is an error whose message is safe to show to the client along
// with the HTTP status to respond with.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted marks the error as safe for the client with the given status.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap returns the wrapped error so ledger errors can still be matched.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns the Trusted error in the chain, or nil.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// =============================================================================

// Rule maps every error matching Target onto Status.
type Rule struct {
	Target error
	Status int
}

// Classify returns err as a Trusted error with the status of the first rule
// whose target it matches. Errors matching no rule are returned unchanged
// and end up as a 500.
func Classify(err error, rules ...Rule) error {
	if err == nil || IsTrusted(err) {
		return err
	}

	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			return NewTrusted(err, rule.Status)
		}
	}

	return err
}
