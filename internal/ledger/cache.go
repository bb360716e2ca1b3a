package ledger

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CountCache persists the last known transaction count under the home
// directory. It is a refresh hint for display, never a correctness-critical
// value, so load failures simply report "no cached value".
type CountCache struct {
	path string
}

// NewCountCache returns a cache stored at homeDir/txcount.
func NewCountCache(homeDir string) *CountCache {
	return &CountCache{path: filepath.Join(homeDir, "txcount")}
}

// Load reads the cached count. The second return is false when no usable
// cache exists.
func (c *CountCache) Load() (uint64, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

// Store writes the count, creating the home directory if needed.
func (c *CountCache) Store(count uint64) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.path, []byte(strconv.FormatUint(count, 10)+"\n"), 0o644)
}
