// Package mock provides an httptest-backed imitation of the portal backend
// that facilitates unit testing of the client-side session flow.
//
// The mock issues HS256 JWT access and refresh tokens, answers the /auth
// endpoints with the portal's response envelope and protects every other path
// under the API base with bearer authentication. Call counters let tests assert
// how many network round trips a client performed.
package mock
