package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/brettbedarf/treestore/internal/util"
	"github.com/spf13/afero"
)

const filePerm os.FileMode = 0o644

// FileStorage keeps the document in a single file on an afero filesystem.
// Saves go to a sibling temp file first and are renamed over the document so
// a failed write never truncates the previous state.
type FileStorage struct {
	fs   afero.Fs
	path string
}

func NewFileStorage(fs afero.Fs, path string) *FileStorage {
	return &FileStorage{fs: fs, path: path}
}

// NewOsFileStorage stores the document at path on the host filesystem
func NewOsFileStorage(path string) *FileStorage {
	return NewFileStorage(afero.NewOsFs(), path)
}

// NewMemoryStorage keeps the document in memory for the life of the process
func NewMemoryStorage() *FileStorage {
	return NewFileStorage(afero.NewMemMapFs(), "repository.json")
}

// Path returns the document path on the underlying filesystem
func (s *FileStorage) Path() string {
	return s.path
}

func (s *FileStorage) Load() ([]byte, error) {
	return afero.ReadFile(s.fs, s.path)
}

func (s *FileStorage) Save(data []byte) error {
	logger := util.GetLogger("FileStorage.Save")

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, filePerm); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	logger.Trace().Str("path", s.path).Int("bytes", len(data)).Msg("Saved document")
	return nil
}

func (s *FileStorage) Close() error {
	return nil
}
