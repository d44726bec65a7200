package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Cache stores rendered transcripts on disk so repeated loads of the same
// video skip the provider round trip. Files are named
// transcript_<videoID>_<timestamp>.txt and the newest one wins.
type Cache struct {
	dir string
}

// NewCache creates a transcript cache rooted at dir
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Lookup returns the newest cached transcript for a video, if any
func (c *Cache) Lookup(videoID string) (string, bool) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return "", false
	}

	prefix := "transcript_" + videoID + "_"
	var matches []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			matches = append(matches, entry.Name())
		}
	}
	if len(matches) == 0 {
		return "", false
	}

	// Timestamps sort lexicographically, so the last name is the newest
	sort.Strings(matches)
	data, err := os.ReadFile(filepath.Join(c.dir, matches[len(matches)-1]))
	if err != nil {
		return "", false
	}

	return string(data), true
}

// Save writes a rendered transcript to the cache and returns its path
func (c *Cache) Save(videoID, text string) (string, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	name := fmt.Sprintf("transcript_%s_%s.txt", videoID, time.Now().UTC().Format("20060102_150405"))
	path := filepath.Join(c.dir, name)

	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("failed to write transcript file: %w", err)
	}

	return path, nil
}
