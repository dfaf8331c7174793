// Package scan enumerates convertible files under a directory.
package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions are the lowercase extensions Files recognises.
var Extensions = []string{"dds", "png", "jpg", "jpeg", "tga"}

type Options struct {
	// Exclude is a directory whose subtree is skipped, typically the
	// destination when it is nested inside the source.
	Exclude string
}

// Files walks root recursively and returns the regular files whose extension
// exactly matches one of Extensions, in lexical order.
func Files(root string, opts Options) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if recognised(root) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var exclude string
	if opts.Exclude != "" {
		if exclude, err = filepath.Abs(opts.Exclude); err != nil {
			return nil, err
		}
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if exclude != "" && path != root {
				if abs, err := filepath.Abs(path); err == nil && isWithin(abs, exclude) {
					return fs.SkipDir
				}
			}
			return nil
		}
		if !d.Type().IsRegular() || !recognised(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func recognised(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func isWithin(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
