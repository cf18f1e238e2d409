// Package records provides account-level maintenance flows against the
// repository: exporting the published records of the authenticated user to a
// timestamped CSV and accepting open review requests.
package records
