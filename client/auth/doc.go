// Package auth implements the portal session client.
//
// A Client owns one Session hydrated from a store.Store at construction. It
// logs users in and out, renews the access token with the refresh token, and
// performs authenticated API requests: a stale session is renewed before the
// request is sent, and a request rejected with `401 Unauthorized` is replayed
// once after a successful renewal. Concurrent renewals are collapsed into a
// single in-flight call.
//
// Every operation reports failures as *Error values tagged with a Kind; none
// of them panic.
package auth
