// Package auth provides the AuthHub authentication core: bcrypt credential
// hashing, stateless JWT issuance and verification, a credential store over
// Bun, and HTTP surface for registration, login, and token introspection.
//
// Tokens are self-verifying capabilities: validity is decided from the
// token's own contents, a shared HS256 secret, and the current time. There
// is no server-side session object and no revocation before natural expiry.
//
// Identity is keyed by normalized (lower-cased, trimmed) email. The store's
// unique index is the single point of truth for uniqueness; concurrent
// registrations race against it, never against an in-process lock.
//
// The guard middleware in middleware/jwtware enforces bearer authentication
// for protected routes and attaches verified claims to the request context.
package auth
