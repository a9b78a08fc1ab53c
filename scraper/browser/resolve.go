package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"realestate-scraper/scraper"
)

// ProbeFunc waits until at least one visible element matches selector, or
// its context expires. Injectable so resolution logic is testable without a
// browser.
type ProbeFunc func(ctx context.Context, selector string) error

func visibleProbe(ctx context.Context, selector string) error {
	return chromedp.Run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// ResolveSelector probes the candidates in order, giving each up to
// perTimeout to produce a visible match. The first match wins and later
// candidates are never probed; candidates should therefore be ordered
// most-likely first. Exhausting the list is fatal to the run.
func ResolveSelector(ctx context.Context, candidates []string, perTimeout time.Duration, probe ProbeFunc) (string, error) {
	if probe == nil {
		probe = visibleProbe
	}

	for _, sel := range candidates {
		selCtx, cancel := context.WithTimeout(ctx, perTimeout)
		err := probe(selCtx, sel)
		cancel()
		if err == nil {
			return sel, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", &scraper.NotFoundError{Candidates: candidates}
}
