// Package attendance holds the training attendance rules: resolving a user's
// status from a session's attendance map, the expiration gate, the roster
// partition and the single-button toggle.
//
// Every function in this package is pure. Storage and transport live in the
// persistence and application packages.
package attendance
