package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ImportFile is the specialization CSV, relative to the project root.
const ImportFile = "data/ad_specialization.csv"

// FilePath resolves the absolute path of ImportFile.
func (c ImportConfig) FilePath() (string, error) {
	root := c.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve import file: %w", err)
		}
		root = ProjectRoot(wd)
	}

	abs, err := filepath.Abs(filepath.Join(root, filepath.FromSlash(ImportFile)))
	if err != nil {
		return "", fmt.Errorf("resolve import file: %w", err)
	}
	return abs, nil
}

// ProjectRoot walks up from dir to the nearest directory holding a go.mod.
// It returns dir itself when no ancestor has one.
func ProjectRoot(dir string) string {
	for cur := dir; ; {
		if _, err := os.Stat(filepath.Join(cur, "go.mod")); err == nil {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir
		}
		cur = parent
	}
}
