// Package coordinate provides dependency coordinates in the
// `group:module:version` notation used by Maven-style repositories.
package coordinate
