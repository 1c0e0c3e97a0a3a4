// Package portal exposes typed calls for the Aura portal endpoints used by the
// student and staff front ends. Every call goes through a Requester, normally
// an *auth.Client, so it inherits session renewal and retry.
//
// Payloads are returned as generic JSON values: certificate parsing and
// leaderboard ranking happen on the server.
package portal
