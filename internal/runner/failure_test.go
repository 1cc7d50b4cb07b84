// internal/runner/failure_test.go
package runner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailure_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("net::ERR_CONNECTION_REFUSED")
	f := &Failure{Kind: KindNavigation, State: StateSessionOpen, Err: cause}

	assert.Contains(t, f.Error(), "navigation")
	assert.Contains(t, f.Error(), "session_open")
	assert.ErrorIs(t, f, cause)
}

func TestFailure_Reason(t *testing.T) {
	cases := []struct {
		kind FailureKind
		want string
	}{
		{KindNavigation, "navigation failed"},
		{KindElementNotFound, "element not found within timeout"},
		{KindElementNotInteractable, "element not interactable"},
		{KindSession, "browser session error"},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			f := &Failure{Kind: tc.kind, State: StateNotStarted, Err: errors.New("boom")}
			assert.Contains(t, f.Reason(), tc.want)
			assert.Contains(t, f.Reason(), "boom")
		})
	}
}
