package updater

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/pforge-labs/pforge/internal/branding"
	"github.com/pforge-labs/pforge/internal/platform"
)

// ReplaceBinary swaps the running binary for newPath: back up, rename into
// place, verify the new binary answers version --json, and roll back on
// any failure.
func ReplaceBinary(newPath, currentPath string) error {
	if runtime.GOOS == "windows" {
		return fmt.Errorf("self-update is not supported on Windows; download the latest release from https://github.com/%s/releases", branding.GitHubRepo())
	}

	info, err := os.Stat(currentPath)
	if err != nil {
		return fmt.Errorf("stat current binary: %w", err)
	}
	origPerm := info.Mode().Perm()

	backupPath := currentPath + ".backup"
	if err := rename(currentPath, backupPath); err != nil {
		return fmt.Errorf("creating backup: %w", err)
	}
	if err := rename(newPath, currentPath); err != nil {
		RollbackBinary(backupPath, currentPath)
		return fmt.Errorf("installing new binary: %w", err)
	}
	platform.Chmod(currentPath, origPerm)

	if err := VerifyBinary(currentPath); err != nil {
		RollbackBinary(backupPath, currentPath)
		return fmt.Errorf("verification failed, rolled back: %w", err)
	}

	os.Remove(backupPath)
	return nil
}

// VerifyBinary runs the binary with version --json and checks it produces
// parseable output within five seconds.
func VerifyBinary(binaryPath string) error {
	cmd := exec.Command(binaryPath, "version", "--json")
	done := make(chan error, 1)
	var output []byte
	go func() {
		var err error
		output, err = cmd.Output()
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("new binary exited with error: %w", err)
		}
	case <-time.After(5 * time.Second):
		cmd.Process.Kill()
		return fmt.Errorf("new binary timed out")
	}

	var versionInfo map[string]string
	if err := json.Unmarshal(output, &versionInfo); err != nil {
		return fmt.Errorf("parsing version output: %w", err)
	}
	return nil
}

// RollbackBinary restores the backup to the current path.
func RollbackBinary(backupPath, currentPath string) error {
	if err := rename(backupPath, currentPath); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	return nil
}

// rename moves src to dst, copying across filesystems when rename fails.
func rename(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
