// Package store provides flat-file persistence for the bot: per-requester
// wallet ledgers, daily usage bookkeeping, and process-wide settings. All
// files live under a single data directory and are small JSON or text blobs
// rewritten whole on every save.
package store

import (
	"encoding/json"
	"fmt"
	"os"
)

// loadJSON reads path into v. A missing file is not an error; the caller's
// default stands.
func loadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func saveJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func loadText(path, defaultValue string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return defaultValue
	}
	return string(data)
}

func saveText(path, value string) error {
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
