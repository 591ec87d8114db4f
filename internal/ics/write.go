package ics

import (
	"errors"
	"os"
	"path/filepath"
)

// WriteFile writes the calendar atomically: temp file in the target
// directory, then rename. A run that dies mid-write never truncates a
// previously good calendar.
func WriteFile(path string, data []byte) error {
	if path == "" {
		return errors.New("ics: output path is empty")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".agendacal-*.ics.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
