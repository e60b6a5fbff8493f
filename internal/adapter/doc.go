// Package adapter implements the interaction fetcher for ppiviz.
//
// # Sources
//
// InteractionSource is the seam between the pipeline and a backend that
// answers interaction-network queries. StringClient talks to the STRING REST
// API: it posts identifiers to the tsv-no-header network and get_link
// endpoints, throttles calls with a token bucket and collapses identical
// concurrent queries with singleflight. FileSource serves saved responses
// from disk. CachedSource wraps either one with the persistent response
// cache from the repository package.
//
// # Fetching
//
// Fetcher parses network bodies (columns 3 and 4 are the node names, column
// 11 the experimental score), drops edges at or below the threshold, and
// builds an InteractionGraph. FetchFirst walks an ordered list of identifier
// candidates and returns the first non-empty graph; transport failures are
// logged and treated as "no result" for that candidate.
//
// # Registry
//
// Registry maps source names to sources so the server can pick the backend
// named in its configuration.
package adapter
