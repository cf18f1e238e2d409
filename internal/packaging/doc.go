// Package packaging prepares a dataset directory for upload: it builds the
// file_list.csv inventory with sizes and SHA-512 digests, assembles the
// ESID archive, writes the upload manifest, and converts the README.html
// description into its Markdown companion.
package packaging
