package browser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"realestate-scraper/config"
	"realestate-scraper/scraper"
)

// networkQuietWindow is how long the page must go without in-flight requests
// before a networkidle wait considers it settled.
const networkQuietWindow = 500 * time.Millisecond

// Navigate drives the session through the profile's step sequence, strictly
// in order. Each step navigates (when it has a URL), applies its wait
// strategy, then sleeps its settle delay.
func Navigate(ctx context.Context, steps []config.NavStep) error {
	for i, step := range steps {
		if err := runStep(ctx, i, step); err != nil {
			return err
		}
	}
	return nil
}

func runStep(ctx context.Context, index int, step config.NavStep) error {
	stepCtx, cancel := context.WithTimeout(ctx, step.Timeout.Std())
	defer cancel()

	// The idle listener must be live before navigation starts, otherwise
	// requests fired during page load are invisible to it.
	var idle *networkIdleWaiter
	if step.Wait == config.WaitNetworkIdle {
		idle = newNetworkIdleWaiter(networkQuietWindow)
		idle.listen(stepCtx)
	}

	var actions []chromedp.Action
	if step.URL != "" {
		actions = append(actions, chromedp.Navigate(step.URL))
	}

	switch step.Wait {
	case config.WaitNetworkIdle:
		actions = append(actions, idle.wait())
	case config.WaitSelectorGone:
		actions = append(actions, chromedp.Poll(selectorGoneExpr(step.WaitSelector), nil))
	case config.WaitSleep, "":
		// settle delay below is the only wait
	default:
		return fmt.Errorf("navigation step %d: unknown wait strategy %q", index, step.Wait)
	}

	if d := step.SettleDelay.Std(); d > 0 {
		actions = append(actions, chromedp.Sleep(d))
	}

	if err := chromedp.Run(stepCtx, actions...); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return &scraper.NavigationTimeoutError{Step: index, URL: step.URL}
		}
		return fmt.Errorf("navigation step %d (%s): %w", index, step.URL, err)
	}
	return nil
}

// selectorGoneExpr builds the predicate polled while waiting for a loading
// overlay to disappear.
func selectorGoneExpr(selector string) string {
	return `(function() {
		var el = document.querySelector(` + strconv.Quote(selector) + `);
		return !el || el.style.display === "none" || el.offsetParent === null;
	})()`
}

// networkIdleWaiter tracks in-flight requests for one navigation step.
// Requires network events to be enabled on the session.
type networkIdleWaiter struct {
	quiet time.Duration

	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
	last     time.Time
}

func newNetworkIdleWaiter(quiet time.Duration) *networkIdleWaiter {
	return &networkIdleWaiter{
		quiet:    quiet,
		inflight: make(map[network.RequestID]struct{}),
		last:     time.Now(),
	}
}

// listen registers the event handler on the session. Must be called before
// the step's navigation runs; the listener dies with ctx.
func (w *networkIdleWaiter) listen(ctx context.Context) {
	chromedp.ListenTarget(ctx, w.handleEvent)
}

func (w *networkIdleWaiter) handleEvent(ev interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		w.inflight[e.RequestID] = struct{}{}
		w.last = time.Now()
	case *network.EventLoadingFinished:
		delete(w.inflight, e.RequestID)
		w.last = time.Now()
	case *network.EventLoadingFailed:
		delete(w.inflight, e.RequestID)
		w.last = time.Now()
	}
}

func (w *networkIdleWaiter) idle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.inflight) == 0 && time.Since(w.last) >= w.quiet
}

// wait blocks until no request has been in flight for the quiet window.
func (w *networkIdleWaiter) wait() chromedp.ActionFunc {
	return func(ctx context.Context) error {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if w.idle() {
					return nil
				}
			}
		}
	}
}
