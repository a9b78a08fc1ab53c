package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"realestate-scraper/utils"
)

const diagnosticsTimeout = 15 * time.Second

// captureDiagnostics writes a full-page screenshot and an HTML snapshot of
// whatever the session is currently showing, for offline inspection after a
// failed run. Capture failures are logged, never propagated — the original
// error is what matters.
func captureDiagnostics(ctx context.Context, dir, name string, logger *utils.Logger) []string {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("[browser] Could not create diagnostics dir %s: %v", dir, err)
		return nil
	}

	capCtx, cancel := context.WithTimeout(ctx, diagnosticsTimeout)
	defer cancel()

	stamp := time.Now().Format("2006-01-02_15-04-05")
	var artifacts []string

	var shot []byte
	if err := chromedp.Run(capCtx, chromedp.FullScreenshot(&shot, 80)); err != nil {
		logger.Warn("[browser] Screenshot capture failed for %s: %v", name, err)
	} else {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", name, stamp))
		if err := os.WriteFile(path, shot, 0o644); err != nil {
			logger.Warn("[browser] Screenshot write failed: %v", err)
		} else {
			artifacts = append(artifacts, path)
		}
	}

	var html string
	if err := chromedp.Run(capCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		logger.Warn("[browser] HTML snapshot failed for %s: %v", name, err)
	} else {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.html", name, stamp))
		if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
			logger.Warn("[browser] HTML snapshot write failed: %v", err)
		} else {
			artifacts = append(artifacts, path)
		}
	}

	return artifacts
}
