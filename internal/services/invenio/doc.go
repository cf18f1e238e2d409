// Package invenio implements the HTTP client for an InvenioRDM-compatible
// repository such as Zenodo. It covers the draft record lifecycle (create,
// attach files, review, publish, delete) and the user record and request
// search endpoints.
package invenio
