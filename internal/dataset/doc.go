// Package dataset discovers publishable dataset archives on disk, resolves
// the file set each one uploads, and derives recording dates from archive
// contents.
package dataset
