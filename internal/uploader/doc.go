// Package uploader drives the remote-API call sequence that publishes one
// dataset: create draft, attach files, optional community review, optional
// publish. Failures are classified and reported as tagged outcomes rather
// than raised across component boundaries.
package uploader
