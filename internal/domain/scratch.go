package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// swapped in tests
var writeFile = os.WriteFile

// Scratch hands out unique file paths under one directory.
type Scratch struct {
	dir string
}

func NewScratch(dir string) *Scratch {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "medassist")
	}
	return &Scratch{dir: dir}
}

func (s *Scratch) Dir() string { return s.dir }

// Path returns a fresh path with the given prefix and extension. The file is
// not created.
func (s *Scratch) Path(prefix, ext string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return filepath.Join(s.dir, prefix+"_"+uuid.NewString()+strings.ToLower(ext)), nil
}

// Write stores data in a fresh file and returns its path plus a cleanup
// func that removes it. The cleanup removes the path even when the write
// failed partway.
func (s *Scratch) Write(prefix, ext string, data []byte) (string, func(), error) {
	path, err := s.Path(prefix, ext)
	if err != nil {
		return "", func() {}, err
	}
	cleanup := func() { _ = os.Remove(path) }
	if err := writeFile(path, data, 0o600); err != nil {
		cleanup()
		return "", cleanup, fmt.Errorf("write scratch file: %w", err)
	}
	return path, cleanup, nil
}
