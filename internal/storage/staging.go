package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Staging is the local temporary area where admitted files wait for the
// relay worker. Writes complete before the owning photo record is
// created, so the worker never sees a half-written file.
type Staging struct {
	dir string
}

func NewStaging(dir string) (*Staging, error) {
	if dir == "" {
		return nil, fmt.Errorf("staging dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Staging{dir: dir}, nil
}

// Save streams r into the staging area under name.
func (s *Staging) Save(name string, r io.Reader) (int64, error) {
	f, err := os.Create(s.Path(name))
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(s.Path(name))
		return 0, err
	}
	return n, nil
}

// Path returns the absolute location of a staged file.
func (s *Staging) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// Exists reports whether the staged file is still present.
func (s *Staging) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

func (s *Staging) Remove(name string) error {
	err := os.Remove(s.Path(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
