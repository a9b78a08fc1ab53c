package scraper

import (
	"context"
	"sync"
	"time"

	"realestate-scraper/config"
	"realestate-scraper/models"
	"realestate-scraper/services"
	"realestate-scraper/storage"
	"realestate-scraper/utils"
)

// CollectResult is what an engine hands back for one site profile.
type CollectResult struct {
	Listings []*models.RawListing
	Selector string // card selector that matched on the page
}

// Collector drives one scraping engine (headless browser, static HTTP)
// through a site profile and returns the raw listings it found.
type Collector interface {
	Collect(ctx context.Context, profile config.SiteProfile) (*CollectResult, error)
}

// Orchestrator sequences the scrape pipeline: collect raw listings per site
// profile, normalize, and upsert into storage. A mutex guards against
// overlapping runs regardless of which trigger fired.
type Orchestrator struct {
	cfg        *config.Config
	profiles   []config.SiteProfile
	collectors map[string]Collector
	normalizer *services.Normalizer
	store      storage.Upserter
	archive    storage.RawArchiver
	logger     *utils.Logger

	busy sync.Mutex
}

// New creates an Orchestrator. Engines are attached with RegisterCollector.
func New(cfg *config.Config, profiles []config.SiteProfile, store storage.Upserter, logger *utils.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		profiles:   profiles,
		collectors: make(map[string]Collector),
		normalizer: services.NewNormalizer(logger),
		store:      store,
		logger:     logger,
	}
}

// RegisterCollector attaches the engine used for profiles of the given kind.
func (o *Orchestrator) RegisterCollector(engine string, c Collector) {
	o.collectors[engine] = c
}

// SetArchive enables the optional raw-listing archive written before
// normalization on every run.
func (o *Orchestrator) SetArchive(a storage.RawArchiver) {
	o.archive = a
}

// RunOnce executes a single scrape run across all site profiles. One
// profile's failure does not abort the others; the run as a whole fails only
// when every profile failed or the batch upsert failed. Returns
// ErrRunInProgress without doing any work if a run is already executing.
func (o *Orchestrator) RunOnce(ctx context.Context) (*models.ScrapeReport, error) {
	if !o.busy.TryLock() {
		return nil, ErrRunInProgress
	}
	defer o.busy.Unlock()

	report := &models.ScrapeReport{
		StartedAt:     time.Now(),
		SelectorsUsed: make(map[string]string),
		Failures:      make(map[string]string),
	}
	conc := o.cfg.MaxConcurrency
	if conc < 1 {
		conc = 1
	}
	o.logger.Info("[scrape] Run starting — %d profile(s), concurrency %d", len(o.profiles), conc)

	var (
		mu       sync.Mutex
		raws     []*models.RawListing
		firstErr error
	)
	seen := utils.NewURLSet()
	pool := utils.NewWorkerPool(conc, o.cfg.RateLimitMs)

	for _, p := range o.profiles {
		p := p
		collector, ok := o.collectors[p.Engine]
		if !ok {
			o.logger.Error("[scrape] %s: no collector registered for engine %q", p.Name, p.Engine)
			report.Failures[p.Name] = "no collector for engine " + p.Engine
			continue
		}

		pool.Submit(func() {
			start := time.Now()
			res, err := collector.Collect(ctx, p)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				o.logger.Error("[scrape] %s failed after %v: %v", p.Name, time.Since(start).Round(time.Millisecond), err)
				report.Failures[p.Name] = err.Error()
				if firstErr == nil {
					firstErr = err
				}
				return
			}

			report.SelectorsUsed[p.Name] = res.Selector
			kept := 0
			for _, r := range res.Listings {
				// Listings without a link cannot be deduped here; the
				// normalizer skips them later.
				if r.Link == "" || seen.Add(r.Link) {
					raws = append(raws, r)
					kept++
				}
			}
			o.logger.Info("[scrape] %s: %d listing(s) via %q in %v",
				p.Name, kept, res.Selector, time.Since(start).Round(time.Millisecond))
		})
	}
	pool.Wait()

	if len(report.Failures) > 0 && len(report.Failures) == len(o.profiles) {
		report.Duration = time.Since(report.StartedAt)
		o.logger.Error("[scrape] Run failed — all %d profile(s) errored", len(o.profiles))
		return report, firstErr
	}

	report.RawCount = len(raws)

	if o.archive != nil {
		if err := o.archive.WriteRaw(raws); err != nil {
			o.logger.Warn("[scrape] Raw archive write failed: %v", err)
		}
	}

	listings, skipped := o.normalizer.Normalize(raws)
	report.SkippedCount = skipped

	written, err := o.store.Upsert(ctx, listings)
	if err != nil {
		report.Duration = time.Since(report.StartedAt)
		perr := &PersistenceError{Err: err}
		o.logger.Error("[scrape] Run failed — %v", perr)
		return report, perr
	}

	report.Written = written
	report.Duration = time.Since(report.StartedAt)
	o.logger.Info("[scrape] Run complete — raw %d, skipped %d, written %d in %v (failed profiles: %d)",
		report.RawCount, report.SkippedCount, report.Written,
		report.Duration.Round(time.Millisecond), len(report.Failures))
	return report, nil
}
