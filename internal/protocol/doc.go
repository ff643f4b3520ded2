// Package protocol owns the line-oriented wire contract shared with the
// enrollment server.
//
// Ownership boundary:
// - line tokenizing and the colon-prefixed trailing parameter
// - outbound command construction
// - typed decoding of server-to-client events
//
// The package holds no state. Interpreting events is the job of
// internal/reconcile.
package protocol
