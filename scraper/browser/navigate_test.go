package browser

import (
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkIdleWaiterTracksLoadTimeRequests(t *testing.T) {
	w := newNetworkIdleWaiter(10 * time.Millisecond)

	// A request fired while the page is still loading keeps the page busy
	// until its response lands, even across the quiet window.
	w.handleEvent(&network.EventRequestWillBeSent{RequestID: "req-1"})
	time.Sleep(20 * time.Millisecond)
	assert.False(t, w.idle(), "an in-flight request must block idleness")

	w.handleEvent(&network.EventLoadingFinished{RequestID: "req-1"})
	assert.False(t, w.idle(), "the quiet window restarts when the last request finishes")

	require.Eventually(t, w.idle, time.Second, 2*time.Millisecond)
}

func TestNetworkIdleWaiterCountsFailedRequests(t *testing.T) {
	w := newNetworkIdleWaiter(5 * time.Millisecond)

	w.handleEvent(&network.EventRequestWillBeSent{RequestID: "req-1"})
	w.handleEvent(&network.EventRequestWillBeSent{RequestID: "req-2"})
	w.handleEvent(&network.EventLoadingFinished{RequestID: "req-1"})
	assert.False(t, w.idle(), "req-2 is still outstanding")

	w.handleEvent(&network.EventLoadingFailed{RequestID: "req-2"})
	require.Eventually(t, w.idle, time.Second, time.Millisecond)
}

func TestNetworkIdleWaiterQuietWindow(t *testing.T) {
	w := newNetworkIdleWaiter(30 * time.Millisecond)

	assert.False(t, w.idle(), "freshly created waiter has not been quiet long enough")
	require.Eventually(t, w.idle, time.Second, 2*time.Millisecond)
}
