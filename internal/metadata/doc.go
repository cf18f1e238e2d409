// Package metadata assembles the record metadata payload sent to the
// repository: project identity, per-dataset collector attributes, the
// description sourced from the dataset's README, and optional citation
// enrichments.
package metadata
