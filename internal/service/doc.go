// Package service implements the session-scoped PPI pipeline for ppiviz.
//
// PPIService coordinates the resolver, the interaction fetcher, the composer,
// the analyzer and the layout engine on behalf of the HTTP handlers. State is
// kept per Session in a SessionStore; every operation on a session holds the
// session's lock, so requests for one session serialise while different
// sessions proceed independently.
//
// # Lifecycle
//
// SelectGenes resolves the whole selection, fetches one graph per coding gene,
// composes them, tags roles, places the nodes and resets the method to none.
// SelectMethod re-annotates the cached graph without touching the network.
// SetLayout and SavePositions only change positions; layouts are persisted by
// graph fingerprint when a repository is configured.
//
// # Event System
//
// Every state change is published on the EventBus for delivery to connected
// clients via Server-Sent Events (SSE).
package service
