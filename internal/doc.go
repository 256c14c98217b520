// Package internal documents the server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware and routing
// - domain: content collections and operator accounts
// - storage: PostgreSQL repositories and migrations
// - uploads: stored image assets
// - auth, config, email, metrics, sanitize: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
