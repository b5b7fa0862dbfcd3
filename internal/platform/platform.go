// Package platform wraps the filesystem operations that differ across
// operating systems: permission bits and symbolic links. On Windows,
// permission changes are no-ops and symlinks fall back to a file copy with
// a .target sidecar when developer mode is unavailable.
package platform

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Chmod sets file permissions. On Windows this is a no-op because Windows
// does not support Unix-style permission bits.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// CreateSymlink links link to target, replacing an existing link. On
// Windows without symlink support the target is copied and its path
// recorded in a sidecar so ReadSymlinkTarget can recover it.
func CreateSymlink(target, link string) error {
	_ = RemoveSymlink(link)

	if err := os.Symlink(target, link); err == nil {
		return nil
	} else if runtime.GOOS != "windows" {
		return err
	}

	if err := copyForSymlink(target, link); err != nil {
		return fmt.Errorf("symlink fallback (copy) failed: %w", err)
	}
	// Best-effort sidecar; the copy itself already succeeded.
	_ = os.WriteFile(link+".target", []byte(target), 0644)
	return nil
}

// RemoveSymlink removes a symlink or its fallback copy and sidecar.
func RemoveSymlink(path string) error {
	err := os.Remove(path)
	os.Remove(path + ".target")
	return err
}

// ReadSymlinkTarget returns the target of a symlink, falling back to the
// .target sidecar written by CreateSymlink on Windows.
func ReadSymlinkTarget(path string) (string, error) {
	target, err := os.Readlink(path)
	if err == nil {
		return target, nil
	}
	if runtime.GOOS != "windows" {
		return "", err
	}
	data, readErr := os.ReadFile(path + ".target")
	if readErr != nil {
		return "", fmt.Errorf("readlink failed and no .target sidecar found: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// copyForSymlink copies target to link, resolving relative targets against
// the link's parent directory the way the OS resolves relative symlinks.
func copyForSymlink(target, link string) error {
	src := target
	if !filepath.IsAbs(src) {
		src = filepath.Join(filepath.Dir(link), src)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(link)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
