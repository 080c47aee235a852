package provider

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// findSessionFiles recursively walks dir for files whose name ends in ext.
// A missing or unreadable directory is reported as an error so the caller
// can log it at info level and move on — not a parse failure.
func findSessionFiles(dir, ext string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, keep walking
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
