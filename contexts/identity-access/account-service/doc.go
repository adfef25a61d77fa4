// Package account implements the account service: registration, sessions,
// profiles, password changes, role administration and activity tracking.
//
// Layering:
// - domain: user entity, activity events, errors
// - application: commands/queries using explicit ports
// - ports: stable boundaries for persistence, hashing, sessions and audit
// - adapters: concrete HTTP, memory, postgres and bcrypt implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Every mutating command runs the shared gate before touching the repository.
// - Admin audit entries are written through ports.AuditRecorder; the
//   implementation lives in another context and is wired by bootstrap.
package account
