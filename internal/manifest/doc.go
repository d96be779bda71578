// Package manifest recovers HLS playlists from captured browser traffic.
//
// Candidate playlists are selected by URL, their relative segment references
// are rewritten to absolute URLs so the files can be fetched outside the
// browser, and the results are written next to the other item artifacts.
// The package also sums #EXTINF durations and inspects written playlists.
package manifest
