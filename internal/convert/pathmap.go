package convert

import (
	"fmt"
	"path/filepath"
	"strings"

	"ddsconv/internal/format"
)

// Eligible drops files whose name already ends in the target's extension.
// The match is case-sensitive and order is preserved.
func Eligible(files []string, target format.Format) []string {
	suffix := "." + target.Extension()
	out := make([]string, 0, len(files))
	for _, f := range files {
		if strings.HasSuffix(f, suffix) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// MapPath places input under destRoot at the same position it has under
// sourceRoot, with its extension replaced by ext. Inputs that are not
// strictly below sourceRoot fail with a KindPathMapping *FileError.
func MapPath(input, sourceRoot, destRoot, ext string) (Mapping, error) {
	src, root := input, sourceRoot
	if filepath.IsAbs(src) != filepath.IsAbs(root) {
		var err error
		if src, err = filepath.Abs(src); err != nil {
			return Mapping{}, &FileError{Kind: KindPathMapping, Path: input, Err: err}
		}
		if root, err = filepath.Abs(root); err != nil {
			return Mapping{}, &FileError{Kind: KindPathMapping, Path: input, Err: err}
		}
	}

	rel, err := filepath.Rel(root, src)
	if err != nil {
		return Mapping{}, &FileError{Kind: KindPathMapping, Path: input, Err: err}
	}
	if !isBelow(rel) {
		return Mapping{}, &FileError{
			Kind: KindPathMapping,
			Path: input,
			Err:  fmt.Errorf("not inside source root %s", sourceRoot),
		}
	}

	rel = withExtension(rel, ext)
	return Mapping{Source: input, Rel: rel, Dest: filepath.Join(destRoot, rel)}, nil
}

func isBelow(rel string) bool {
	if rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func withExtension(path, ext string) string {
	old := filepath.Ext(path)
	if old == filepath.Base(path) {
		// dotfile with no stem
		old = ""
	}
	return strings.TrimSuffix(path, old) + "." + ext
}
