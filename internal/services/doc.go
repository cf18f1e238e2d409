// Package services holds shared error markers and helpers used by the
// packages that talk to external systems.
package services
