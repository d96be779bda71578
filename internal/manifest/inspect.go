package manifest

import (
	"fmt"
	"os"

	"github.com/grafov/m3u8"
)

// Info summarises a written playlist.
type Info struct {
	Master         bool
	Variants       int
	Segments       int
	TargetDuration float64
	Duration       float64
}

// Inspect decodes the playlist at path. Media playlists report their
// segment count and the sum of segment durations; master playlists report
// their variant count.
func Inspect(path string) (Info, error) {
	file, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	playlist, listType, err := m3u8.DecodeFrom(file, false)
	if err != nil {
		return Info{}, fmt.Errorf("decode manifest %s: %w", path, err)
	}

	switch listType {
	case m3u8.MASTER:
		master, ok := playlist.(*m3u8.MasterPlaylist)
		if !ok {
			return Info{}, fmt.Errorf("decode manifest %s: unexpected master type %T", path, playlist)
		}
		return Info{Master: true, Variants: len(master.Variants)}, nil
	case m3u8.MEDIA:
		media, ok := playlist.(*m3u8.MediaPlaylist)
		if !ok {
			return Info{}, fmt.Errorf("decode manifest %s: unexpected media type %T", path, playlist)
		}
		info := Info{TargetDuration: media.TargetDuration}
		for _, seg := range media.Segments {
			if seg == nil {
				break
			}
			info.Segments++
			info.Duration += seg.Duration
		}
		return info, nil
	default:
		return Info{}, fmt.Errorf("decode manifest %s: unknown playlist type", path)
	}
}
