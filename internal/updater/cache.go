package updater

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pforge-labs/pforge/internal/branding"
)

const cacheFileName = "version-check.json"

// DefaultCacheMaxAge bounds how long a cached version check stays fresh.
const DefaultCacheMaxAge = 24 * time.Hour

// VersionCache is the persisted result of a background version check.
type VersionCache struct {
	LatestVersion   string    `json:"latest_version"`
	CurrentVersion  string    `json:"current_version"`
	CheckedAt       time.Time `json:"checked_at"`
	UpdateAvailable bool      `json:"update_available"`
}

// LoadCache reads the version cache from dir. A missing cache file is not
// an error; it returns nil, nil.
func LoadCache(dir string) (*VersionCache, error) {
	data, err := os.ReadFile(filepath.Join(dir, cacheFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading version cache: %w", err)
	}
	var cache VersionCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("parsing version cache: %w", err)
	}
	return &cache, nil
}

// SaveCache writes the version cache into dir.
func SaveCache(dir string, cache *VersionCache) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling version cache: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, cacheFileName), data, 0644); err != nil {
		return fmt.Errorf("writing version cache: %w", err)
	}
	return nil
}

// IsCacheStale reports whether the cache is missing or older than maxAge.
func IsCacheStale(cache *VersionCache, maxAge time.Duration) bool {
	return cache == nil || time.Since(cache.CheckedAt) > maxAge
}

// CheckAndPrintBanner prints an update banner from the cached check when a
// newer version is known, and refreshes a stale cache in the background
// for the next invocation. It never blocks the command.
func (u *Updater) CheckAndPrintBanner(w io.Writer, cacheDir string) {
	cache, err := LoadCache(cacheDir)
	if err != nil {
		return // a broken cache never breaks the command
	}

	if cache != nil && cache.UpdateAvailable && cache.CurrentVersion == u.current {
		fmt.Fprintf(w, "\nUpdate available: %s -> %s\n", cache.CurrentVersion, cache.LatestVersion)
		fmt.Fprintf(w, "    Run `%s update` to upgrade\n\n", branding.CLIName())
	}

	if IsCacheStale(cache, DefaultCacheMaxAge) {
		go u.refreshCache(cacheDir)
	}
}

func (u *Updater) refreshCache(cacheDir string) {
	release, err := u.CheckLatest()
	if err != nil {
		return
	}
	available, err := u.IsUpdateAvailable(release.Version)
	if err != nil {
		return
	}
	_ = SaveCache(cacheDir, &VersionCache{
		LatestVersion:   release.Version,
		CurrentVersion:  u.current,
		CheckedAt:       time.Now(),
		UpdateAvailable: available,
	})
}
