// Package cli implements the aura command line: login, logout, status, renew
// and raw API requests against a portal server, with the session persisted
// in a credential store between invocations.
package cli
