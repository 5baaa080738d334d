// Package store persists the materialized tables as delimited files and
// reloads them at startup.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ademuri/listening-dashboard/internal/table"
)

// Names of the materialized tables.
const (
	Analysis = "analysis"
	Catalog  = "catalog"
)

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".csv")
}

// Save writes the table under name, replacing any previous version only
// once the new file is complete.
func (s *Store) Save(name string, t *table.Table) error {
	path := s.Path(name)
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if err := table.WriteCSV(tmp, t, ','); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Load reads the table saved under name, restoring numeric and boolean
// columns. The text columns are read as text even when every cell looks
// like a number, so labels such as "007" survive.
func (s *Store) Load(name string, text ...string) (*table.Table, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	t, err := table.ReadCSV(f, table.ReadOptions{InferTypes: true, Text: text})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return t, nil
}

// Exists reports whether a table has been saved under name.
func (s *Store) Exists(name string) (bool, error) {
	_, err := os.Stat(s.Path(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", name, err)
	}
	return true, nil
}
