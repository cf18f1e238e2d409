// Command azus publishes Eclipse Soundscapes audio dataset bundles to an
// InvenioRDM-compatible repository and maintains the local records that
// track what has been uploaded.
package main
