package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// networkRow builds a tsv-no-header network line with the given escore
func networkRow(a, b string, escore float64) string {
	return fmt.Sprintf("9606.ENSP_%s\t9606.ENSP_%s\t%s\t%s\t9606\t0.999\t0\t0\t0\t0.1\t%g\t0.5\t0.9", a, b, a, b, escore)
}

func newTestStringServer(t *testing.T, handler http.HandlerFunc) (*StringClient, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewStringClient(WithBaseURL(srv.URL), WithRateLimit(0, 0), WithTimeout(5*time.Second)), &calls
}

func TestStringClientNetworkRequest(t *testing.T) {
	client, calls := newTestStringServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tsv-no-header/network", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "TP53\rMDM2", r.PostForm.Get("identifiers"))
		assert.Equal(t, "9606", r.PostForm.Get("species"))
		assert.Equal(t, DefaultCallerIdentity, r.PostForm.Get("caller_identity"))
		fmt.Fprintln(w, networkRow("TP53", "MDM2", 0.9))
	})

	body, err := client.Network(context.Background(), []string{"TP53", "MDM2"})
	require.NoError(t, err)
	assert.Contains(t, string(body), "TP53\tMDM2")
	assert.Equal(t, int32(1), calls.Load())
}

func TestStringClientStatusHandling(t *testing.T) {
	t.Run("404 is no result", func(t *testing.T) {
		client, _ := newTestStringServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
		_, err := client.Network(context.Background(), []string{"X"})
		assert.ErrorIs(t, err, ErrNoResult)
	})

	t.Run("500 is a transport error", func(t *testing.T) {
		client, _ := newTestStringServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := client.Network(context.Background(), []string{"X"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoResult)
	})
}

func TestStringClientSharedQueryOutlivesCancelledCaller(t *testing.T) {
	release := make(chan struct{})
	client, calls := newTestStringServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		fmt.Fprintln(w, networkRow("TP53", "MDM2", 0.9))
	})
	unblock := sync.OnceFunc(func() { close(release) })
	t.Cleanup(unblock)

	cancelledCtx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := client.Network(cancelledCtx, []string{"TP53"})
		first <- err
	}()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	type result struct {
		body []byte
		err  error
	}
	second := make(chan result, 1)
	go func() {
		body, err := client.Network(context.Background(), []string{"TP53"})
		second <- result{body, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case err := <-first:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	unblock()
	select {
	case res := <-second:
		require.NoError(t, res.err)
		assert.Contains(t, string(res.body), "TP53\tMDM2")
	case <-time.After(2 * time.Second):
		t.Fatal("live caller did not return")
	}
}

type outcomeLog struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *outcomeLog) ObserveFetch(_ string, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *outcomeLog) ObserveCache(bool) {}

func TestStringClientOutcomes(t *testing.T) {
	bodies := map[string]string{
		"TP53":   networkRow("TP53", "MDM2", 0.9) + "\n",
		"MALAT1": "",
		"BAD":    "Error: no identifiers found\n",
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.FormValue("identifiers")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	obs := &outcomeLog{}
	client := NewStringClient(WithBaseURL(srv.URL), WithRateLimit(0, 0), WithObserver(obs))
	for _, id := range []string{"TP53", "MALAT1", "BAD", "NOPE"} {
		_, _ = client.Network(context.Background(), []string{id})
	}
	assert.Equal(t, []string{OutcomeOK, OutcomeEmpty, OutcomeEmpty, OutcomeNotFound}, obs.outcomes)
}

func TestStringClientLink(t *testing.T) {
	client, _ := newTestStringServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tsv-no-header/get_link", r.URL.Path)
		fmt.Fprintln(w, "https://version-11-5.string-db.org/cgi/link?to=ABC")
	})
	link, err := client.Link(context.Background(), []string{"TP53"})
	require.NoError(t, err)
	assert.Equal(t, "https://version-11-5.string-db.org/cgi/link?to=ABC", link)
}

func TestParseNetworkThreshold(t *testing.T) {
	scores := []float64{0.1, 0.39, 0.40, 0.41, 0.9}
	var lines []string
	for i, s := range scores {
		lines = append(lines, networkRow("TP53", fmt.Sprintf("P%d", i), s))
	}

	got, err := ParseNetwork([]byte(strings.Join(lines, "\n")), 0.4)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0.41, got[0].Score)
	assert.Equal(t, 0.9, got[1].Score)
	assert.Equal(t, "TP53", got[0].A)
	assert.Equal(t, "P3", got[0].B)
}

func TestParseNetworkNoResult(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"whitespace body", "\n\n"},
		{"error payload", "Error\tnot found\n"},
		{"all below threshold", networkRow("A", "B", 0.2)},
		{"only self loops", networkRow("A", "A", 0.9)},
		{"malformed rows", "a\tb\tc\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNetwork([]byte(tt.body), 0.4)
			assert.ErrorIs(t, err, ErrNoResult)
		})
	}
}

func TestParseNetworkSkipsBadRows(t *testing.T) {
	body := strings.Join([]string{
		networkRow("A", "B", 0.8),
		"too\tfew\tcolumns",
		strings.Replace(networkRow("A", "C", 0.8), "\t0.8\t", "\tnan-ish\t", 1),
		networkRow("B", "C", 0.7) + "\r",
	}, "\n")

	got, err := ParseNetwork([]byte(body), 0.4)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[1].A)
	assert.Equal(t, "C", got[1].B)
}
