// Package transcode converts recovered playlists into local media files with
// ffmpeg.
//
// ffmpeg writes to a hidden partial file beside the playlist; the partial is
// renamed to <playlist>.mp4 or <playlist>.mp3 only after ffmpeg exits
// cleanly, so an interrupted run never leaves a truncated file under the
// final name. Command execution sits behind Executor so tests can stub it.
package transcode
