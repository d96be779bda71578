// Package scrape reads recording metadata and transcripts from the viewer
// page.
package scrape
