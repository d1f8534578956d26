package ingest

import (
	"fmt"

	"github.com/sayeems/pcc-test-sdk/internal/logger"
	"github.com/sayeems/pcc-test-sdk/internal/pcc"
)

// FileSource serves a content directory through the same contracts as the
// content cloud. Reload re-reads the directory.
type FileSource struct {
	*pcc.Memory
	dir string
	log *logger.Logger
}

func NewFileSource(dir string, log *logger.Logger) (*FileSource, error) {
	if log == nil {
		log = logger.Discard()
	}
	fs := &FileSource{
		Memory: pcc.NewMemory(nil, nil),
		dir:    dir,
		log:    log.With("component", "ingest"),
	}
	if err := fs.Reload(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileSource) Dir() string { return fs.dir }

func (fs *FileSource) Reload() error {
	set, warns, err := Ingest(fs.dir)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", fs.dir, err)
	}
	for _, w := range warns {
		fs.log.Warn(w.Msg, "path", w.Path)
	}
	fs.Memory.Replace(set.Articles, set.Recommended)
	fs.log.Info("ingested articles", "dir", fs.dir, "count", len(set.Articles))
	return nil
}
