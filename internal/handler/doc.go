// Package handler implements the HTTP API.
//
// SessionHandler drives one researcher session at a time: gene selection,
// analysis method, layout algorithm, dragged positions, export and the
// session's event stream. CatalogHandler serves gene-name lookups, the method
// and layout menus, and the health probe.
//
// # Errors
//
// Failures are returned as {error, details} JSON. Bad input (unknown gene,
// method, layout or format, malformed body) maps to 400, an unknown session
// to 404, an analysis before any graph exists to 409 and an analysis that
// did not converge to 422.
//
// # Middleware
//
// Chain composes Logger, Instrument, CORS and Recover around the mux.
// The recorder they share forwards Flush so SSE streams still work.
package handler
