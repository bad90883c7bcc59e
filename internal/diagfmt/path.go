package diagfmt

import (
	"path/filepath"

	"mirbuild/internal/source"
)

const unknownPath = "<unknown>"

func formatPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	if !fs.Has(id) {
		return unknownPath
	}
	path := fs.Get(id).Path
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathModeRelative:
		if base := fs.BaseDir(); base != "" {
			if rel, err := filepath.Rel(base, path); err == nil {
				return filepath.ToSlash(rel)
			}
		}
	case PathModeBasename:
		return filepath.Base(path)
	}
	return path
}
