package home

import (
	"fmt"
	"io"
	"os"
)

// Init creates the home directory layout, reporting each directory it
// creates. Existing directories are left untouched.
func Init(w io.Writer) error {
	for _, dir := range []string{Root(), ReposRoot(), DeploymentsRoot()} {
		if _, err := os.Stat(dir); err == nil {
			fmt.Fprintf(w, "  exists  %s\n", dir)
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Fprintf(w, "  created %s\n", dir)
	}
	return nil
}
