package utils

import (
	"fmt"
	"os"
)

// CreateFolder creates every given directory, parents included.
func CreateFolder(folders ...string) error {
	for _, folder := range folders {
		if err := os.MkdirAll(folder, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", folder, err)
		}
	}
	return nil
}

// RemoveFile deletes files, ignoring ones that are already gone.
func RemoveFile(paths ...string) error {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove file %s: %w", path, err)
		}
	}
	return nil
}
