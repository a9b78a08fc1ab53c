package browser

import (
	"context"

	"realestate-scraper/config"
	"realestate-scraper/scraper"
	"realestate-scraper/utils"
)

// Engine scrapes browser-engine site profiles with headless Chrome. Each
// Collect call gets its own browser process, released on every exit path.
type Engine struct {
	sessions *Manager
	diagDir  string
	logger   *utils.Logger
	probe    ProbeFunc // nil outside tests
}

// NewEngine creates a browser Engine.
func NewEngine(cfg *config.Config, logger *utils.Logger) *Engine {
	return &Engine{
		sessions: NewManager(cfg, logger),
		diagDir:  cfg.DiagnosticsDir,
		logger:   logger,
	}
}

// Collect navigates to the profile's listings page, resolves the card
// selector, and extracts raw listings. On any failure it captures a page
// screenshot and HTML snapshot before the error unwinds.
func (e *Engine) Collect(ctx context.Context, p config.SiteProfile) (res *scraper.CollectResult, err error) {
	sess, err := e.sessions.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer e.sessions.Release(sess)
	defer func() {
		if err == nil {
			return
		}
		artifacts := captureDiagnostics(sess.Ctx, e.diagDir, p.Name, e.logger)
		for _, a := range artifacts {
			e.logger.Info("[browser] %s: diagnostic saved to %s", p.Name, a)
		}
	}()

	if err = Navigate(sess.Ctx, p.Steps); err != nil {
		return nil, err
	}

	selector, err := ResolveSelector(sess.Ctx, p.CardSelectors, p.SelectorTimeout.Std(), e.probe)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("[browser] %s: listings matched %q", p.Name, selector)

	listings, err := extractListings(sess.Ctx, selector, p)
	if err != nil {
		return nil, err
	}

	return &scraper.CollectResult{Listings: listings, Selector: selector}, nil
}
