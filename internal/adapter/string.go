package adapter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Defaults for the STRING REST API
const (
	DefaultStringBaseURL  = "https://version-11-5.string-db.org/api"
	DefaultSpecies        = 9606
	DefaultCallerIdentity = "ppiviz"
	DefaultOutputFormat   = "tsv-no-header"
)

// StringClient talks to the STRING network-biology REST API
type StringClient struct {
	baseURL        string
	species        int
	callerIdentity string
	httpClient     *http.Client
	limiter        *rate.Limiter
	group          singleflight.Group
	observer       Observer
}

// StringOption is a functional option for configuring StringClient
type StringOption func(*StringClient)

// WithBaseURL overrides the API root (used by tests and mirrors)
func WithBaseURL(u string) StringOption {
	return func(c *StringClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithSpecies sets the NCBI taxon id
func WithSpecies(species int) StringOption {
	return func(c *StringClient) {
		c.species = species
	}
}

// WithCallerIdentity sets the caller_identity form field
func WithCallerIdentity(id string) StringOption {
	return func(c *StringClient) {
		c.callerIdentity = id
	}
}

// WithTimeout sets the per-request HTTP timeout
func WithTimeout(d time.Duration) StringOption {
	return func(c *StringClient) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) StringOption {
	return func(c *StringClient) {
		c.httpClient = hc
	}
}

// WithRateLimit throttles outbound calls to rps requests per second.
// rps <= 0 disables throttling.
func WithRateLimit(rps float64, burst int) StringOption {
	return func(c *StringClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithObserver attaches fetch telemetry
func WithObserver(o Observer) StringOption {
	return func(c *StringClient) {
		if o != nil {
			c.observer = o
		}
	}
}

// NewStringClient creates a STRING API client
func NewStringClient(opts ...StringOption) *StringClient {
	c := &StringClient{
		baseURL:        DefaultStringBaseURL,
		species:        DefaultSpecies,
		callerIdentity: DefaultCallerIdentity,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		limiter:        rate.NewLimiter(rate.Limit(1), 1),
		observer:       nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements InteractionSource
func (c *StringClient) Name() string {
	return "string"
}

// Species returns the configured NCBI taxon id
func (c *StringClient) Species() int {
	return c.species
}

// Network posts the identifiers to the network endpoint. Identical concurrent
// queries share one outbound call. The shared call is detached from any one
// caller's cancellation and bounded by the HTTP client timeout; each caller
// still returns as soon as its own context is done.
func (c *StringClient) Network(ctx context.Context, identifiers []string) ([]byte, error) {
	key := "network|" + strconv.Itoa(c.species) + "|" + strings.Join(identifiers, "\r")
	ch := c.group.DoChan(key, func() (any, error) {
		return c.post(context.WithoutCancel(ctx), "network", identifiers)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			log.Printf("string: shared in-flight network query for %v", identifiers)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// Link posts the identifiers to the get_link endpoint and returns the URL
func (c *StringClient) Link(ctx context.Context, identifiers []string) (string, error) {
	body, err := c.post(ctx, "get_link", identifiers)
	if err != nil {
		return "", err
	}
	link := strings.TrimSpace(string(body))
	if link == "" || strings.Contains(link, "Error") {
		return "", ErrNoResult
	}
	return link, nil
}

func (c *StringClient) post(ctx context.Context, method string, identifiers []string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	form := url.Values{}
	form.Set("identifiers", strings.Join(identifiers, "\r"))
	form.Set("species", strconv.Itoa(c.species))
	form.Set("caller_identity", c.callerIdentity)

	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, DefaultOutputFormat, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observer.ObserveFetch(c.Name(), OutcomeError, time.Since(start))
		return nil, fmt.Errorf("%s request: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		c.observer.ObserveFetch(c.Name(), OutcomeError, time.Since(start))
		return nil, fmt.Errorf("read %s response: %w", method, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		c.observer.ObserveFetch(c.Name(), OutcomeNotFound, time.Since(start))
		return nil, ErrNoResult
	}
	if resp.StatusCode != http.StatusOK {
		c.observer.ObserveFetch(c.Name(), OutcomeError, time.Since(start))
		return nil, fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || bytes.HasPrefix(trimmed, []byte("Error")) {
		c.observer.ObserveFetch(c.Name(), OutcomeEmpty, time.Since(start))
		return body, nil
	}
	c.observer.ObserveFetch(c.Name(), OutcomeOK, time.Since(start))
	return body, nil
}
