// Package repository defines the data access interfaces for ppiviz.
//
// Two things are persisted: raw interaction-service responses, so repeated
// selections across restarts do not hit the remote API, and node positions
// per (graph fingerprint, layout algorithm), so a graph rebuilt later reuses
// its layout and user-dragged positions survive restarts.
//
// The implementation lives in the sqlite subpackage and uses the pure-Go
// modernc.org/sqlite driver. Tests run against in-memory databases.
package repository
