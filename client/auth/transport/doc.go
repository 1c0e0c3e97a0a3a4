// Package transport implements an http.RoundTripper that authenticates portal
// requests with the current session's bearer token.
//
// Before sending, a stale session is renewed; a request rejected with
// `401 Unauthorized` is replayed exactly once after a successful renewal. The
// RoundTripper never renews by itself: it delegates to a Renewer, typically the
// auth.Client that owns the session.
package transport
