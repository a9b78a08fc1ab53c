package scraper

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRunInProgress is returned by RunOnce when another run holds the guard.
var ErrRunInProgress = errors.New("scrape run already in progress")

// LaunchError means the browser process failed to start. Fatal to the run.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string { return "browser launch failed: " + e.Err.Error() }
func (e *LaunchError) Unwrap() error { return e.Err }

// NavigationTimeoutError means a navigation step exceeded its wait budget.
type NavigationTimeoutError struct {
	Step int
	URL  string
}

func (e *NavigationTimeoutError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("navigation step %d timed out", e.Step)
	}
	return fmt.Sprintf("navigation step %d timed out (%s)", e.Step, e.URL)
}

// NotFoundError means no candidate card selector matched a visible element.
// It almost always indicates the target site changed its markup.
type NotFoundError struct {
	Candidates []string
}

func (e *NotFoundError) Error() string {
	return "no candidate selector matched: tried " + strings.Join(e.Candidates, ", ")
}

// NoListingsFoundError means a selector matched but zero listings yielded any
// extractable data. The scrape always expects a populated page, so this is
// structural drift, not a legitimate empty result.
type NoListingsFoundError struct {
	Selector string
}

func (e *NoListingsFoundError) Error() string {
	return fmt.Sprintf("selector %q matched but no listings were extracted", e.Selector)
}

// PersistenceError means the batch upsert failed; nothing is assumed committed.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "listing upsert failed: " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
