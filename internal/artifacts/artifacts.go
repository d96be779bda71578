// Package artifacts writes per-item output files atomically.
//
// Every write lands in a temporary file that is synced and renamed over the
// destination, so an interrupted run never leaves a truncated manifest,
// subtitle, or metadata file behind.
package artifacts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/renameio/v2"
)

const fileMode os.FileMode = 0o644

// WriteFile atomically replaces path with data.
func WriteFile(path string, data []byte) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(fileMode))
	if err != nil {
		return fmt.Errorf("create pending file %s: %w", path, err)
	}
	defer func() {
		_ = pending.Cleanup()
	}()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// WriteText atomically replaces path with text.
func WriteText(path, text string) error {
	return WriteFile(path, []byte(text))
}

// WriteJSON encodes v with four-space indentation and without HTML escaping
// so non-ASCII titles stay readable.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return WriteFile(path, bytes.TrimRight(buf.Bytes(), "\n"))
}

// NonEmptyDir reports whether dir exists and holds at least one entry.
func NonEmptyDir(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return len(entries) > 0, nil
}
