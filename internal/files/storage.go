package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage пишет загруженные бинарники в каталог под сгенерированными
// именами; БД хранит только метаданные.
type Storage struct {
	Dir string
}

func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("files: create dir %s: %w", dir, err)
	}
	return &Storage{Dir: dir}, nil
}

// Save возвращает сгенерированное имя и полный путь.
func (s *Storage) Save(src io.Reader, originalName string) (storedName, path string, size int64, err error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	storedName = uuid.NewString() + ext
	path = filepath.Join(s.Dir, storedName)
	dst, err := os.Create(path)
	if err != nil {
		return "", "", 0, err
	}
	defer dst.Close()
	size, err = io.Copy(dst, src)
	if err != nil {
		_ = os.Remove(path)
		return "", "", 0, err
	}
	return storedName, path, size, nil
}

func (s *Storage) Open(storedName string) (*os.File, error) {
	return os.Open(filepath.Join(s.Dir, filepath.Base(storedName)))
}

func (s *Storage) Remove(storedName string) error {
	return os.Remove(filepath.Join(s.Dir, filepath.Base(storedName)))
}
