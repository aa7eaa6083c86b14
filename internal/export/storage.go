package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const reportsDir = "reports"

var ErrInvalidFilename = errors.New("invalid filename")

// LocalStorage keeps exported files under {root}/reports and serves them through the download route.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) *LocalStorage {
	return &LocalStorage{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Save writes data and returns the storage-relative path.
func (s *LocalStorage) Save(filename string, data []byte) (string, error) {
	full, err := s.resolve(filename)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", filename, err)
	}
	return reportsDir + "/" + filename, nil
}

func (s *LocalStorage) URL(filename string) string {
	return s.baseURL + "/api/admin/reports/files/" + filename
}

// Path returns the absolute location of a stored file after checking it exists.
func (s *LocalStorage) Path(filename string) (string, error) {
	full, err := s.resolve(filename)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(full); err != nil {
		return "", err
	}
	return full, nil
}

func (s *LocalStorage) Remove(filename string) error {
	full, err := s.resolve(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", filename, err)
	}
	return nil
}

func (s *LocalStorage) resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", ErrInvalidFilename
	}
	return filepath.Join(s.root, reportsDir, filename), nil
}
