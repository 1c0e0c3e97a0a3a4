// Package store persists the portal session (access token, refresh token,
// expiry and identity) across process restarts.
//
// Store projects a Session onto a flat key/value capability. Two KeyValue
// backends ship with the package: an in-memory map that is sufficient for tests
// and short-lived tools, and a File backend that keeps a JSON snapshot at any
// afs URL so that a later process observes the latest credentials.
package store
