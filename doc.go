// Package aura provides high-level helpers for working with the Aura portal API.
//
// The package glues the session client from client/auth with a credential
// store and configuration structures that can be populated from CLI flags or
// YAML/JSON files. The primary entry point is NewClient, which returns an
// *auth.Client hydrated from the configured store.
//
// Example:
//
//	options, _ := aura.LoadOptions(ctx, "~/.aura/config.yaml")
//	cli, _ := aura.NewClient(ctx, options, logger)
//	if _, err := cli.Login(ctx, "alice", "secret"); err != nil { ... }
//	res, _ := cli.PerformRequest(ctx, "/staff/dashboard", nil)
package aura
