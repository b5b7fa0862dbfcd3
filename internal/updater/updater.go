// Package updater implements self-update for the pforge binary. It checks
// GitHub Releases for new versions, downloads and checksum-verifies the
// platform archive, extracts the binary, and swaps the running executable
// with backup and rollback. A daily-cached version check powers the
// startup banner.
package updater

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/pforge-labs/pforge/internal/branding"
)

const defaultAPIBase = "https://api.github.com"

// Release is a published release on GitHub.
type Release struct {
	Version   string    `json:"tag_name"`
	Assets    []Asset   `json:"assets"`
	Published time.Time `json:"published_at"`
	HTMLURL   string    `json:"html_url"`
}

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"browser_download_url"`
	Size        int64  `json:"size"`
}

// Updater checks for and applies new versions.
type Updater struct {
	current string
	client  *http.Client
	apiBase string
}

// Option configures an Updater.
type Option func(*Updater)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(u *Updater) { u.client = c }
}

// WithAPIBase points the updater at a different API endpoint, used by
// tests and mirror setups.
func WithAPIBase(base string) Option {
	return func(u *Updater) { u.apiBase = strings.TrimRight(base, "/") }
}

// New returns an updater for the given running version.
func New(current string, opts ...Option) *Updater {
	u := &Updater{current: current, client: http.DefaultClient, apiBase: defaultAPIBase}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CheckLatest fetches the latest release.
func (u *Updater) CheckLatest() (*Release, error) {
	return u.fetchRelease(fmt.Sprintf("%s/repos/%s/releases/latest", u.apiBase, branding.GitHubRepo()))
}

// CheckVersion fetches a release by tag, tolerating a missing "v" prefix.
func (u *Updater) CheckVersion(tag string) (*Release, error) {
	if !strings.HasPrefix(tag, "v") {
		tag = "v" + tag
	}
	return u.fetchRelease(fmt.Sprintf("%s/repos/%s/releases/tags/%s", u.apiBase, branding.GitHubRepo(), tag))
}

func (u *Updater) fetchRelease(url string) (*Release, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", branding.CLIName()+"-updater")
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		req.Header.Set("Authorization", "token "+token)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching release: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("release not found")
	case http.StatusForbidden:
		return nil, fmt.Errorf("GitHub API rate limit exceeded; set GITHUB_TOKEN for higher limits")
	default:
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	var release Release
	if err := json.Unmarshal(body, &release); err != nil {
		return nil, fmt.Errorf("parsing release: %w", err)
	}
	return &release, nil
}

// IsUpdateAvailable reports whether latest is strictly newer than the
// running version.
func (u *Updater) IsUpdateAvailable(latest string) (bool, error) {
	cmp, err := CompareVersions(u.current, latest)
	if err != nil {
		return false, err
	}
	return cmp < 0, nil
}

// CompareVersions compares two version strings under semver ordering,
// tolerating a leading "v". It returns -1, 0, or 1.
func CompareVersions(current, latest string) (int, error) {
	cv, err := semver.NewVersion(strings.TrimPrefix(current, "v"))
	if err != nil {
		return 0, fmt.Errorf("parsing current version %q: %w", current, err)
	}
	lv, err := semver.NewVersion(strings.TrimPrefix(latest, "v"))
	if err != nil {
		return 0, fmt.Errorf("parsing latest version %q: %w", latest, err)
	}
	return cv.Compare(lv), nil
}
