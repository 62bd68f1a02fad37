package sportsengine

import "fmt"

// AuthenticationError means the login itself failed: rejected
// credentials, or a required login element never resolved.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return "authentication failed"
	}
	return e.Message
}

// ExtractionError means a required non-login element or page never
// resolved. The session stays valid, only this fetch is lost.
type ExtractionError struct {
	Step string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("extraction failed at %q", e.Step)
	}
	return fmt.Sprintf("extraction failed at %q: %s", e.Step, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
