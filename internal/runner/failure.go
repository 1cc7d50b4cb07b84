// internal/runner/failure.go
package runner

import "fmt"

// FailureKind tags a run failure with the class of fault that caused it.
type FailureKind string

const (
	// KindNavigation: the target page was unreachable or failed to load in time.
	KindNavigation FailureKind = "navigation"
	// KindElementNotFound: a required element was still absent when the
	// polling timeout elapsed.
	KindElementNotFound FailureKind = "element_not_found"
	// KindElementNotInteractable: the element was located but never became
	// clickable/editable, or acting on it failed.
	KindElementNotInteractable FailureKind = "element_not_interactable"
	// KindSession: the underlying browser process failed to start or crashed.
	KindSession FailureKind = "session"
)

// Failure describes why a run did not complete. Every failure is terminal:
// nothing is retried, and teardown has already been attempted by the time a
// Failure is returned to the caller.
type Failure struct {
	// Kind classifies the fault.
	Kind FailureKind
	// State is the last state the run reached before the failing step.
	State State
	// Err is the underlying driver error.
	Err error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("%s failure at state %q: %v", f.Kind, f.State, f.Err)
}

// Unwrap exposes the underlying driver error for errors.Is/As.
func (f *Failure) Unwrap() error {
	return f.Err
}

// Reason returns the human-readable failure message surfaced to the caller.
func (f *Failure) Reason() string {
	switch f.Kind {
	case KindNavigation:
		return fmt.Sprintf("navigation failed: %v", f.Err)
	case KindElementNotFound:
		return fmt.Sprintf("element not found within timeout: %v", f.Err)
	case KindElementNotInteractable:
		return fmt.Sprintf("element not interactable: %v", f.Err)
	case KindSession:
		return fmt.Sprintf("browser session error: %v", f.Err)
	default:
		return f.Error()
	}
}
