package updater

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pforge-labs/pforge/internal/branding"
)

const checksumsAsset = "checksums.txt"

// Download fetches the platform asset for the release into destDir and
// verifies it against the release's checksums.txt. It returns the archive
// path.
func (u *Updater) Download(release *Release, destDir string) (string, error) {
	asset, err := SelectAsset(release.Assets)
	if err != nil {
		return "", err
	}

	destPath := filepath.Join(destDir, asset.Name)
	if err := u.fetchFile(asset.DownloadURL, destPath); err != nil {
		return "", fmt.Errorf("downloading %s: %w", asset.Name, err)
	}
	if err := u.verifyChecksum(release, destPath); err != nil {
		os.Remove(destPath)
		return "", err
	}
	return destPath, nil
}

func (u *Updater) fetchFile(url, destPath string) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", branding.CLIName()+"-updater")

	resp, err := u.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// verifyChecksum checks the archive against the sha256 recorded for it in
// the release's checksums.txt.
func (u *Updater) verifyChecksum(release *Release, archivePath string) error {
	var checksums *Asset
	for i := range release.Assets {
		if release.Assets[i].Name == checksumsAsset {
			checksums = &release.Assets[i]
			break
		}
	}
	if checksums == nil {
		return fmt.Errorf("%s not found in release assets", checksumsAsset)
	}

	req, err := http.NewRequest(http.MethodGet, checksums.DownloadURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", branding.CLIName()+"-updater")
	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading checksums: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("checksums download returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading checksums: %w", err)
	}

	// Each line is "sha256  filename".
	name := filepath.Base(archivePath)
	var expected string
	for _, line := range strings.Split(string(body), "\n") {
		if parts := strings.Fields(line); len(parts) == 2 && parts[1] == name {
			expected = parts[0]
			break
		}
	}
	if expected == "" {
		return fmt.Errorf("no checksum found for %s", name)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("computing checksum: %w", err)
	}
	if actual := hex.EncodeToString(h.Sum(nil)); actual != expected {
		return fmt.Errorf("checksum mismatch for %s: expected %s, got %s", name, expected, actual)
	}
	return nil
}
