// internal/runner/runner.go
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State tracks how far a run progressed. A run always terminates in
// StateClosed: teardown happens on every exit path, successful or not.
type State string

const (
	StateNotStarted  State = "not_started"
	StateSessionOpen State = "session_open"
	StateNavigated   State = "navigated"
	StateFieldFilled State = "field_filled"
	StateSubmitted   State = "submitted"
	StateClosed      State = "closed"
)

// Session is the slice of the browser driver the runner needs: navigate,
// bounded waits, text injection, click, a settling pause, and teardown.
// Implementations must make Close idempotent.
type Session interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string) error
	SetValue(ctx context.Context, selector, value string) error
	WaitEnabled(ctx context.Context, selector string) error
	Click(ctx context.Context, selector string) error
	Settle(ctx context.Context, d time.Duration) error
	Close(ctx context.Context) error
}

// SessionFactory opens a fresh browser session for one run. A factory that
// returns an error must not leave a session behind.
type SessionFactory interface {
	NewSession(ctx context.Context) (Session, error)
}

// Spec holds the inputs for one run. Payload is an uninterpreted string
// handed to the input element verbatim.
type Spec struct {
	TargetURL       string
	Payload         string
	InputSelector   string
	TriggerSelector string
	// ElementTimeout bounds each polling wait (element present, element clickable).
	ElementTimeout time.Duration
	// SettleDelay is the fixed pause after invoking the trigger, giving
	// asynchronous page-side effects time to land. The page exposes no
	// observable post-submit condition to poll on instead.
	SettleDelay time.Duration
}

// Result reports the outcome of one run. Failure is nil on success.
type Result struct {
	RunID    string
	State    State
	Failure  *Failure
	Started  time.Time
	Finished time.Time
}

// OK reports whether the run completed every step.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Runner executes one fixed UI interaction sequence against one target page:
// navigate, wait-and-fill, wait-and-click, settle, teardown. Strictly
// sequential, no retries. Exactly one session is created and exactly one is
// destroyed per Run call, on success and on every failure path.
type Runner struct {
	factory SessionFactory
	logger  *zap.Logger
}

// New creates a Runner backed by the given session factory.
func New(factory SessionFactory, logger *zap.Logger) *Runner {
	return &Runner{
		factory: factory,
		logger:  logger.Named("runner"),
	}
}

// Run performs the interaction sequence described by spec. All step errors
// are converted into a tagged Failure on the Result; Run itself never
// panics and never retries. The session is torn down before Run returns,
// regardless of where a step failed.
// The named return value matters: the deferred teardown updates the result's
// terminal state and timestamps after the step logic returns.
func (r *Runner) Run(ctx context.Context, spec Spec) (res Result) {
	res = Result{
		RunID:   uuid.New().String(),
		State:   StateNotStarted,
		Started: time.Now(),
	}
	log := r.logger.With(zap.String("run_id", res.RunID))

	log.Info("Starting interaction run",
		zap.String("url", spec.TargetURL),
		zap.String("input_selector", spec.InputSelector),
		zap.String("trigger_selector", spec.TriggerSelector),
		zap.Duration("element_timeout", spec.ElementTimeout),
	)

	sess, err := r.factory.NewSession(ctx)
	if err != nil {
		res.Failure = &Failure{Kind: KindSession, State: res.State, Err: err}
		res.State = StateClosed
		res.Finished = time.Now()
		log.Error("Failed to open browser session", zap.Error(err))
		return res
	}
	res.State = StateSessionOpen

	// Teardown runs on every exit path. A close error is logged but never
	// masks the step failure that got us here.
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := sess.Close(closeCtx); err != nil {
			log.Warn("Session teardown reported an error", zap.Error(err))
		}
		res.State = StateClosed
		res.Finished = time.Now()
		if res.Failure == nil {
			log.Info("Run completed successfully", zap.Duration("elapsed", res.Finished.Sub(res.Started)))
		} else {
			log.Error("Run failed", zap.String("reason", res.Failure.Reason()))
		}
	}()

	fail := func(kind FailureKind, err error) Result {
		res.Failure = &Failure{Kind: kind, State: res.State, Err: err}
		return res
	}

	// Step 1: navigate.
	if err := ctx.Err(); err != nil {
		return fail(KindSession, fmt.Errorf("run canceled before navigation: %w", err))
	}
	if err := sess.Navigate(ctx, spec.TargetURL); err != nil {
		return fail(KindNavigation, err)
	}
	res.State = StateNavigated

	// Step 2: wait for the input element, then inject the payload.
	if err := ctx.Err(); err != nil {
		return fail(KindSession, fmt.Errorf("run canceled before fill: %w", err))
	}
	waitCtx, cancel := context.WithTimeout(ctx, spec.ElementTimeout)
	err = sess.WaitVisible(waitCtx, spec.InputSelector)
	cancel()
	if err != nil {
		return fail(KindElementNotFound, fmt.Errorf("input element %q: %w", spec.InputSelector, err))
	}
	if err := sess.SetValue(ctx, spec.InputSelector, spec.Payload); err != nil {
		return fail(KindElementNotInteractable, fmt.Errorf("input element %q: %w", spec.InputSelector, err))
	}
	res.State = StateFieldFilled

	// Step 3: wait for the trigger to become clickable, then invoke it.
	if err := ctx.Err(); err != nil {
		return fail(KindSession, fmt.Errorf("run canceled before submit: %w", err))
	}
	waitCtx, cancel = context.WithTimeout(ctx, spec.ElementTimeout)
	err = sess.WaitEnabled(waitCtx, spec.TriggerSelector)
	cancel()
	if err != nil {
		return fail(KindElementNotInteractable, fmt.Errorf("trigger element %q: %w", spec.TriggerSelector, err))
	}
	if err := sess.Click(ctx, spec.TriggerSelector); err != nil {
		return fail(KindElementNotInteractable, fmt.Errorf("trigger element %q: %w", spec.TriggerSelector, err))
	}
	res.State = StateSubmitted

	// Step 4: fixed settling pause for page-side effects.
	if spec.SettleDelay > 0 {
		if err := sess.Settle(ctx, spec.SettleDelay); err != nil {
			return fail(KindSession, fmt.Errorf("post-submit settle: %w", err))
		}
	}

	return res
}
