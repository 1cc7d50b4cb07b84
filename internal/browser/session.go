// internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/formrun/internal/config"
	"github.com/xkilldash9x/formrun/internal/runner"
)

// Session represents one browser tab driven over CDP. It implements
// runner.Session; Close is idempotent.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	cfg    *config.Config

	onClose   func()
	closeOnce sync.Once
}

var _ runner.Session = (*Session)(nil)

// newSession wraps an already-created tab context.
func newSession(
	ctx context.Context,
	cancel context.CancelFunc,
	cfg *config.Config,
	logger *zap.Logger,
) (*Session, error) {

	sessionID := uuid.New().String()
	s := &Session{
		id:     sessionID,
		ctx:    ctx,
		cancel: cancel,
		logger: logger.With(zap.String("session_id", sessionID)),
		cfg:    cfg,
	}
	return s, nil
}

// initialize connects the tab's CDP target and applies session-wide settings.
func (s *Session) initialize(ctx context.Context) error {
	initCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()

	// Ensure the target (tab) is created and CDP is connected.
	if err := chromedp.Run(initCtx); err != nil {
		return fmt.Errorf("failed to connect browser target: %w", err)
	}

	if len(s.cfg.Network.Headers) > 0 {
		headers := make(network.Headers, len(s.cfg.Network.Headers))
		for k, v := range s.cfg.Network.Headers {
			headers[k] = v
		}
		if err := chromedp.Run(initCtx, network.SetExtraHTTPHeaders(headers)); err != nil {
			return fmt.Errorf("failed to apply extra headers: %w", err)
		}
	}

	s.logger.Debug("Session initialized.")
	return nil
}

// ID returns the unique identifier for the session.
func (s *Session) ID() string {
	return s.id
}

// runActions executes chromedp actions, respecting both the session lifetime
// (s.ctx) and the incoming operational context.
func (s *Session) runActions(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads the URL and waits for the document body to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating", zap.String("url", url))

	navTimeout := s.cfg.Network.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = 60 * time.Second
	}
	navCtx, cancel := context.WithTimeout(ctx, navTimeout)
	defer cancel()

	err := s.runActions(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		if navCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("navigation timed out after %s: %w", navTimeout, err)
		}
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// WaitVisible polls until the element matching the selector is present and
// visible, or the context expires.
func (s *Session) WaitVisible(ctx context.Context, selector string) error {
	s.logger.Debug("Waiting for element", zap.String("selector", selector))
	if err := s.runActions(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("element %q did not appear: %w", selector, err)
	}
	return nil
}

// SetValue sets the element's content to the given text in one shot. The
// payload is opaque; it is not typed key by key.
func (s *Session) SetValue(ctx context.Context, selector, value string) error {
	s.logger.Debug("Setting element value",
		zap.String("selector", selector),
		zap.Int("value_length", len(value)),
	)
	actions := chromedp.Tasks{
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.SetValue(selector, value, chromedp.ByQuery),
	}
	if err := s.runActions(ctx, actions); err != nil {
		return fmt.Errorf("could not set value on %q: %w", selector, err)
	}
	return nil
}

// WaitEnabled polls until the element matching the selector is enabled
// (clickable), or the context expires.
func (s *Session) WaitEnabled(ctx context.Context, selector string) error {
	s.logger.Debug("Waiting for element to become clickable", zap.String("selector", selector))
	actions := chromedp.Tasks{
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.WaitEnabled(selector, chromedp.ByQuery),
	}
	if err := s.runActions(ctx, actions); err != nil {
		return fmt.Errorf("element %q did not become clickable: %w", selector, err)
	}
	return nil
}

// Click invokes the element matching the selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	s.logger.Debug("Clicking element", zap.String("selector", selector))
	actions := chromedp.Tasks{
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	}
	if err := s.runActions(ctx, actions); err != nil {
		return fmt.Errorf("click failed for %q: %w", selector, err)
	}
	return nil
}

// Settle pauses for the given duration, respecting context cancellation.
func (s *Session) Settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	s.logger.Debug("Settling", zap.Duration("duration", d))
	return s.runActions(ctx, chromedp.Sleep(d))
}

// Close terminates the tab. Safe to call more than once; only the first call
// does the work.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.logger.Debug("Closing browser session.")

		if s.cancel != nil {
			s.cancel()
		}

		// Wait for the tab context to wind down, bounded by the caller.
		select {
		case <-s.ctx.Done():
		case <-ctx.Done():
			s.logger.Warn("Context expired while waiting for session close.", zap.Error(ctx.Err()))
		}

		if s.onClose != nil {
			s.onClose()
		}
	})
	return nil
}
