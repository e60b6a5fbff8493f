package adapter

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ppiviz/internal/domain"
)

// Fetcher turns interaction-service responses into graphs and walks the
// identifier fallback list
type Fetcher struct {
	source    InteractionSource
	threshold float64
}

// NewFetcher creates a fetcher over a source. A negative threshold selects
// DefaultThreshold; zero keeps every edge with a positive score.
func NewFetcher(source InteractionSource, threshold float64) *Fetcher {
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	return &Fetcher{source: source, threshold: threshold}
}

// Threshold returns the default edge score threshold
func (f *Fetcher) Threshold() float64 {
	return f.threshold
}

// Source returns the backing source
func (f *Fetcher) Source() InteractionSource {
	return f.source
}

// Fetch issues one batched network query. It returns (nil, nil) when the
// service has nothing above the threshold, and an error only for transport
// failures.
func (f *Fetcher) Fetch(ctx context.Context, identifiers []string, threshold float64) (*domain.InteractionGraph, error) {
	if len(identifiers) == 0 {
		return nil, nil
	}
	body, err := f.source.Network(ctx, identifiers)
	if errors.Is(err, ErrNoResult) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %v from %s: %w", identifiers, f.source.Name(), err)
	}
	interactions, err := ParseNetwork(body, threshold)
	if errors.Is(err, ErrNoResult) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse %v: %w", identifiers, err)
	}
	return domain.FromInteractions(interactions), nil
}

// FetchFirst tries each candidate identifier set in order and returns the
// first non-empty graph. A nil graph means every candidate was exhausted.
// Transport failures are logged and the next candidate is tried.
func (f *Fetcher) FetchFirst(ctx context.Context, candidates [][]string, threshold float64) *domain.InteractionGraph {
	for _, ids := range candidates {
		if ctx.Err() != nil {
			log.Printf("fetcher: giving up on %v: %v", ids, ctx.Err())
			return nil
		}
		g, err := f.Fetch(ctx, ids, threshold)
		if err != nil {
			log.Printf("fetcher: %v", err)
			continue
		}
		if g != nil {
			return g
		}
		log.Printf("fetcher: no interactions for %v", ids)
	}
	return nil
}

// Link returns the deep link for the identifiers, or "" when unavailable
func (f *Fetcher) Link(ctx context.Context, identifiers []string) string {
	if len(identifiers) == 0 {
		return ""
	}
	link, err := f.source.Link(ctx, identifiers)
	if err != nil {
		log.Printf("fetcher: link for %v unavailable: %v", identifiers, err)
		return ""
	}
	return link
}
