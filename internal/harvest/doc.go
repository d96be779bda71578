// Package harvest drives a complete fetch: it signs the browser in, expands
// the requested URL into item identifiers, and processes every item in turn.
//
// Items are handled strictly one at a time with a single browser session.
// For each item the runner captures the viewer page's network traffic,
// scrapes metadata and the transcript, recovers the playlists, optionally
// transcodes them with ffmpeg, and writes a JSON record beside them. A
// failure stops the run; artifacts of finished items stay on disk and are
// recorded in the ledger so a later run with skip-existing resumes.
package harvest
