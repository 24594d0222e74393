package state

import (
	"encoding/json"
	"errors"
	"os"

	"dealscope/internal/logging"
)

// Seen maps a listing link to the price it was last seen at (nil when the
// listing had no price). It backs deduplication and price-drop detection.
type Seen map[string]*int

// file is the on-disk document. The seen field was historically a plain
// list of links; Load migrates that format to the price map.
type file struct {
	Seen json.RawMessage `json:"seen"`
}

// Load reads the seen state from path. Absence or corruption degrades to an
// empty map with a warning.
func Load(path string, logger *logging.Logger) Seen {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to read state %s: %v", path, err)
		}
		return Seen{}
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		logger.Warn("state %s is corrupt, starting empty: %v", path, err)
		return Seen{}
	}
	var seen Seen
	if err := json.Unmarshal(f.Seen, &seen); err == nil && seen != nil {
		return seen
	}
	// Legacy format: a bare list of links, no prices recorded.
	var links []string
	if err := json.Unmarshal(f.Seen, &links); err == nil {
		seen = make(Seen, len(links))
		for _, link := range links {
			seen[link] = nil
		}
		return seen
	}
	logger.Warn("state %s has an unrecognized format, starting empty", path)
	return Seen{}
}

// Save writes the seen state atomically.
func Save(path string, seen Seen, logger *logging.Logger) {
	raw, err := json.Marshal(seen)
	if err != nil {
		logger.Error("failed to encode state: %v", err)
		return
	}
	doc, err := json.MarshalIndent(file{Seen: raw}, "", "  ")
	if err != nil {
		logger.Error("failed to encode state: %v", err)
		return
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, doc, 0o644); err != nil {
		logger.Error("failed to write state: %v", err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		logger.Error("failed to replace state file: %v", err)
	}
}
