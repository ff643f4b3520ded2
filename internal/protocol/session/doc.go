// Package session owns the client side of the enrollment websocket.
//
// Ownership boundary:
// - endpoint derivation and the cca1 handshake
// - reconnect/backoff primitives
// - the single event loop that owns the enrollment model
//
// Line semantics live in internal/protocol and internal/reconcile; this
// package only moves lines and serializes access to the model.
package session
