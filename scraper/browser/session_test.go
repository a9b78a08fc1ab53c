package browser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-scraper/config"
	"realestate-scraper/utils"
)

func TestReleaseInvokesEveryCancel(t *testing.T) {
	m := NewManager(&config.Config{}, utils.NewLogger())

	invoked := make([]bool, 2)
	s := &Session{
		Ctx: context.Background(),
		cancels: []context.CancelFunc{
			func() { invoked[0] = true },
			func() { invoked[1] = true },
		},
	}

	m.Release(s)
	assert.True(t, invoked[0], "task cancel must run on release")
	assert.True(t, invoked[1], "allocator cancel must run on release")
	assert.Nil(t, s.cancels)
}

func TestReleaseIsIdempotent(t *testing.T) {
	m := NewManager(&config.Config{}, utils.NewLogger())

	calls := 0
	s := &Session{
		Ctx:     context.Background(),
		cancels: []context.CancelFunc{func() { calls++ }},
	}

	m.Release(s)
	m.Release(s)
	assert.Equal(t, 1, calls, "a second release must not re-run cancels")

	m.Release(nil) // must not panic
}

func TestFindChromeBinaryPrefersConfigured(t *testing.T) {
	assert.Equal(t, "/opt/custom/chrome", findChromeBinary("/opt/custom/chrome"))
}

func TestCaptureDiagnosticsCreatesDirAndSurvivesCaptureFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "diag")

	// A context with no live browser makes both captures fail; that must be
	// logged and swallowed, never propagated.
	artifacts := captureDiagnostics(context.Background(), dir, "realtor-ca", utils.NewLogger())
	assert.Empty(t, artifacts)

	info, err := os.Stat(dir)
	require.NoError(t, err, "the diagnostics dir is created even when capture fails")
	assert.True(t, info.IsDir())
}

func TestCaptureDiagnosticsUnwritableDir(t *testing.T) {
	// A file where the dir should be makes MkdirAll fail.
	path := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	artifacts := captureDiagnostics(context.Background(), path, "realtor-ca", utils.NewLogger())
	assert.Nil(t, artifacts)
}
