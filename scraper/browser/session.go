package browser

import (
	"context"
	"os"
	"os/exec"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"realestate-scraper/config"
	"realestate-scraper/scraper"
	"realestate-scraper/utils"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// Manager launches and tears down one isolated headless Chrome process per
// scrape run.
type Manager struct {
	cfg    *config.Config
	logger *utils.Logger
}

// Session wraps the chromedp contexts of one live browser process.
type Session struct {
	Ctx     context.Context
	cancels []context.CancelFunc
}

// NewManager creates a session Manager.
func NewManager(cfg *config.Config, logger *utils.Logger) *Manager {
	return &Manager{cfg: cfg, logger: logger}
}

// Acquire spawns a headless browser configured to keep bot-detection friction
// low: no sandbox (containers), fixed viewport, origin isolation disabled,
// desktop UA and headers. Failure to launch is fatal to the run.
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-web-security", true),
		chromedp.Flag("disable-features", "IsolateOrigins,site-per-process"),
		chromedp.Flag("disable-notifications", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(userAgent),
	)
	if bin := findChromeBinary(m.cfg.ChromeBin); bin != "" {
		m.logger.Debug("[browser] Using browser binary: %s", bin)
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)

	// Suppress chromedp log noise
	taskCtx, cancelTask := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	sess := &Session{
		Ctx:     taskCtx,
		cancels: []context.CancelFunc{cancelTask, cancelAlloc},
	}

	// The first Run spawns the browser process.
	err := chromedp.Run(taskCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers(map[string]interface{}{
			"Accept-Language":           "en-US,en;q=0.9",
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Upgrade-Insecure-Requests": "1",
		})),
	)
	if err != nil {
		m.Release(sess)
		return nil, &scraper.LaunchError{Err: err}
	}

	return sess, nil
}

// Release kills the browser process. Safe to call more than once; must run on
// every exit path of a scrape run.
func (m *Manager) Release(s *Session) {
	if s == nil {
		return
	}
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
}

// findChromeBinary locates a Chrome/Chromium binary, preferring the
// configured path.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
