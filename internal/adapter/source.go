package adapter

import (
	"context"
	"errors"
	"time"
)

// ErrNoResult marks a response that carries no usable interactions: an
// "Error" payload, an empty body, or no edge above the threshold
var ErrNoResult = errors.New("interaction service returned no result")

// InteractionSource is a backend that answers interaction-network queries
type InteractionSource interface {
	// Name returns the unique identifier for this source
	Name() string

	// Network returns the raw tab-separated network body for a batch of
	// identifiers
	Network(ctx context.Context, identifiers []string) ([]byte, error)

	// Link returns a deep link to the network page for the identifiers
	Link(ctx context.Context, identifiers []string) (string, error)
}

// Observer receives fetch telemetry
type Observer interface {
	ObserveFetch(source, outcome string, elapsed time.Duration)
	ObserveCache(hit bool)
}

type nopObserver struct{}

func (nopObserver) ObserveFetch(string, string, time.Duration) {}
func (nopObserver) ObserveCache(bool)                          {}

// Fetch outcomes reported to the Observer
const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
	OutcomeNotFound = "not_found"
)
