// Package collectors parses the per-group collectors CSV into validated
// records describing each dataset's site and event attributes.
package collectors
