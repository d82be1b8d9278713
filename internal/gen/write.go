package gen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// WriteOptions controls WriteFile.
type WriteOptions struct {
	// Check compares instead of writing.
	Check bool
}

// WriteFile writes data to path unless the file already holds exactly data.
// It reports whether the file was written. In check mode nothing is
// written and a missing or differing file is reported as stale.
//
// Writes go to a temporary file that is renamed over path.
func WriteFile(path string, data []byte, opt WriteOptions) (wrote, stale bool, err error) {
	existing, readErr := os.ReadFile(path)
	switch {
	case readErr == nil:
		if bytes.Equal(existing, data) {
			return false, false, nil
		}
	case !os.IsNotExist(readErr):
		return false, false, fmt.Errorf("read existing: %w", readErr)
	}

	if opt.Check {
		return false, true, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, false, fmt.Errorf("mkdir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return false, false, fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return false, false, fmt.Errorf("rename tmp: %w", err)
	}
	return true, false, nil
}
