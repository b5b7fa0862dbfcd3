package updater

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pforge-labs/pforge/internal/branding"
)

// ArchiveName returns the release archive filename for the current
// platform, matching the GoReleaser template pforge_{os}_{arch}.tar.gz
// (.zip on Windows).
func ArchiveName() string {
	ext := ".tar.gz"
	if runtime.GOOS == "windows" {
		ext = ".zip"
	}
	return fmt.Sprintf("%s_%s_%s%s", branding.CLIName(), runtime.GOOS, runtime.GOARCH, ext)
}

// SelectAsset finds the release asset for the current platform: an exact
// archive-name match first, then any archive carrying the os_arch pair.
func SelectAsset(assets []Asset) (*Asset, error) {
	expected := ArchiveName()
	for i := range assets {
		if assets[i].Name == expected {
			return &assets[i], nil
		}
	}
	pair := runtime.GOOS + "_" + runtime.GOARCH
	for i := range assets {
		if strings.Contains(assets[i].Name, pair) && isArchive(assets[i].Name) {
			return &assets[i], nil
		}
	}
	return nil, fmt.Errorf("no asset for %s/%s (expected %s)", runtime.GOOS, runtime.GOARCH, expected)
}

func isArchive(name string) bool {
	return strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".zip")
}

// ExtractBinary pulls the CLI binary out of a tar.gz or zip archive and
// returns the extracted path.
func ExtractBinary(archivePath, destDir string) (string, error) {
	if strings.HasSuffix(archivePath, ".zip") {
		return extractZip(archivePath, destDir)
	}
	return extractTarGz(archivePath, destDir)
}

func binaryNames() (string, string) {
	return branding.CLIName(), branding.CLIName() + ".exe"
}

func extractTarGz(archivePath, destDir string) (string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	unix, windows := binaryNames()
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading tar entry: %w", err)
		}
		if base := filepath.Base(hdr.Name); base == unix || base == windows {
			return writeBinary(filepath.Join(destDir, base), tr)
		}
	}
	return "", fmt.Errorf("%s binary not found in archive", unix)
}

func extractZip(archivePath, destDir string) (string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("opening zip archive: %w", err)
	}
	defer r.Close()

	unix, windows := binaryNames()
	for _, f := range r.File {
		base := filepath.Base(f.Name)
		if base != unix && base != windows {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("opening zip entry: %w", err)
		}
		path, err := writeBinary(filepath.Join(destDir, base), rc)
		rc.Close()
		return path, err
	}
	return "", fmt.Errorf("%s binary not found in zip archive", unix)
}

func writeBinary(path string, r io.Reader) (string, error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return "", fmt.Errorf("creating binary file: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return "", fmt.Errorf("extracting binary: %w", err)
	}
	return path, out.Close()
}
