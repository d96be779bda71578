package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Duration sums the #EXTINF durations of the playlist at path.
func Duration(path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	total, err := SumDurations(file)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return total, nil
}

// SumDurations sums the #EXTINF durations read from r. Lines that are not
// duration tags contribute nothing.
func SumDurations(r io.Reader) (float64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var total float64
	for scanner.Scan() {
		line := ParseLine(scanner.Text(), "")
		if line.Kind != LineDuration {
			continue
		}
		seconds, err := ParseDurationTag(line.Text)
		if err != nil {
			return 0, err
		}
		total += seconds
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read manifest: %w", err)
	}
	return total, nil
}
