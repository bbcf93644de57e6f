package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"railscan/internal/domain/port"
)

// DiskImageStore хранит снимки в локальном каталоге.
type DiskImageStore struct {
	dir string
}

// NewDiskImageStore создаёт хранилище и каталог под него.
func NewDiskImageStore(dir string) (*DiskImageStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskImageStore{dir: dir}, nil
}

// SaveOriginal сохраняет исходный снимок под безопасным именем.
func (s *DiskImageStore) SaveOriginal(data []byte, originalName string) (string, error) {
	name := SafeFilename(originalName, time.Now())
	if err := s.write(name, data); err != nil {
		return "", err
	}
	return name, nil
}

// SaveAnnotated сохраняет размеченную копию рядом с исходным файлом.
func (s *DiskImageStore) SaveAnnotated(data []byte, storedName string) (string, error) {
	name := AnnotatedFilename(storedName)
	if err := s.write(name, data); err != nil {
		return "", err
	}
	return name, nil
}

// Load читает сохранённый файл.
func (s *DiskImageStore) Load(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Remove удаляет файл; отсутствие файла ошибкой не считается.
func (s *DiskImageStore) Remove(name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// Dir возвращает каталог хранилища.
func (s *DiskImageStore) Dir() string {
	return s.dir
}

func (s *DiskImageStore) write(name string, data []byte) error {
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o640); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Проверка реализации интерфейса
var _ port.ImageStore = (*DiskImageStore)(nil)
