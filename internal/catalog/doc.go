// Package catalog provides the in-memory safety catalog backing the
// deterministic rule checks: a name-keyed drug lookup and an
// interaction lookup keyed by unordered identifier pairs.
//
// The catalog is built once at startup and is read-only afterwards, so
// concurrent readers need no coordination.
//
// Loading is deliberately fail-open: a missing or malformed catalog
// file produces an empty catalog rather than an error, because the
// serving process must keep answering even when a safety source is
// unavailable. That failure mode is observable: callers can check
// Degraded and Missing to distinguish "no alerts found" from "could
// not check".
package catalog
