package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pforge-labs/pforge/internal/updater"
)

var (
	updateCheck   bool
	updateVersion string
)

func init() {
	updateCmd.Flags().BoolVar(&updateCheck, "check", false, "Check for a new version without installing")
	updateCmd.Flags().StringVar(&updateVersion, "version", "", "Update to a specific version instead of the latest")
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update to the latest released version",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		u := updater.New(buildVersion)

		release, err := fetchRelease(u)
		if err != nil {
			return err
		}

		available, err := u.IsUpdateAvailable(release.Version)
		if err != nil {
			return fmt.Errorf("comparing versions: %w", err)
		}
		if !available && updateVersion == "" {
			fmt.Fprintf(out, "Already up to date (%s)\n", buildVersion)
			return nil
		}
		if updateCheck {
			fmt.Fprintf(out, "Update available: %s -> %s\n%s\n", buildVersion, release.Version, release.HTMLURL)
			return nil
		}

		tmpDir, err := os.MkdirTemp("", "pforge-update-")
		if err != nil {
			return fmt.Errorf("creating temp directory: %w", err)
		}
		defer os.RemoveAll(tmpDir)

		fmt.Fprintf(out, "Downloading %s...\n", release.Version)
		archive, err := u.Download(release, tmpDir)
		if err != nil {
			return err
		}
		binary, err := updater.ExtractBinary(archive, tmpDir)
		if err != nil {
			return err
		}

		current, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locating current binary: %w", err)
		}
		if err := updater.ReplaceBinary(binary, current); err != nil {
			return err
		}

		fmt.Fprintf(out, "Updated %s -> %s\n", buildVersion, release.Version)
		return nil
	},
}

func fetchRelease(u *updater.Updater) (*updater.Release, error) {
	if updateVersion != "" {
		return u.CheckVersion(updateVersion)
	}
	return u.CheckLatest()
}
