package hub

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	connected, disconnected atomic.Int32
}

func (c *countingObserver) ClientConnected()    { c.connected.Add(1) }
func (c *countingObserver) ClientDisconnected() { c.disconnected.Add(1) }

func startHub(t *testing.T) (*Hub, *countingObserver, *httptest.Server) {
	t.Helper()
	obs := &countingObserver{}
	h := New().WithObserver(obs)
	done := make(chan struct{})
	go h.Run(done)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Serve(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(func() {
		srv.Close()
		close(done)
	})
	return h, obs, srv
}

func subscribe(t *testing.T, ctx context.Context, srv *httptest.Server, session string) *bufio.Reader {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?session="+session, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return bufio.NewReader(resp.Body)
}

// nextData returns the payload of the next data frame
func nextData(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}
}

func TestHub_RoutesBySession(t *testing.T) {
	h, obs, srv := startHub(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a := subscribe(t, ctx, srv, "a")
	b := subscribe(t, ctx, srv, "b")
	require.Eventually(t, func() bool { return obs.connected.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, h.ClientCount())

	h.Broadcast(Message{SessionID: "b", Event: map[string]string{"type": "for_b"}})
	h.Broadcast(Message{SessionID: "a", Event: map[string]string{"type": "for_a"}})
	h.Broadcast(Message{Event: map[string]string{"type": "for_all"}})

	assert.Equal(t, `{"type":"for_a"}`, nextData(t, a))
	assert.Equal(t, `{"type":"for_all"}`, nextData(t, a))
	assert.Equal(t, `{"type":"for_b"}`, nextData(t, b))
	assert.Equal(t, `{"type":"for_all"}`, nextData(t, b))
}

func TestHub_Disconnect(t *testing.T) {
	h, obs, srv := startHub(t)
	ctx, cancel := context.WithCancel(context.Background())

	subscribe(t, ctx, srv, "a")
	require.Eventually(t, func() bool { return obs.connected.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool { return obs.disconnected.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, h.ClientCount())
}
