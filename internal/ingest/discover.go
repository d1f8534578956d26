package ingest

import (
	"io/fs"
	"path/filepath"
	"strings"
)

type SourceFile struct {
	Path string
	// Rel is Path relative to the content root, used in warnings.
	Rel string
}

// IsContentFile reports whether name is an article source.
func IsContentFile(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".markdown")
}

// DiscoverSource lists article sources under root. Dot directories such as
// .git or .pccsite are skipped.
func DiscoverSource(root string) ([]SourceFile, error) {
	var out []SourceFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsContentFile(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		out = append(out, SourceFile{Path: path, Rel: filepath.ToSlash(rel)})
		return nil
	})
	return out, err
}
