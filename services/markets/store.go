package markets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	scrapers "marketdata-backend/lib/scrapers/markets"
)

// Store persists the snapshot as a flat json file next to a backup copy.
// Other processes read the file directly, so the shape is a contract.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) backupPath() string {
	return s.path + ".backup"
}

// Save writes the snapshot through a temp file and rename so a crash mid-write
// never leaves a truncated file. The previous copy becomes the backup first.
func (s *Store) Save(snapshot scrapers.Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		err = os.Rename(s.path, s.backupPath())
		if err != nil {
			return fmt.Errorf("rotate backup: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".snapshot-*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(data)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	err = tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Load reads the persisted snapshot, falling back to the backup copy when the
// primary is missing or corrupt.
func (s *Store) Load() (scrapers.Snapshot, error) {
	snapshot, primaryErr := s.loadFile(s.path)
	if primaryErr == nil {
		return snapshot, nil
	}

	snapshot, backupErr := s.loadFile(s.backupPath())
	if backupErr == nil {
		return snapshot, nil
	}
	return scrapers.Snapshot{}, fmt.Errorf("load snapshot: %w (backup: %v)", primaryErr, backupErr)
}

func (s *Store) loadFile(path string) (scrapers.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scrapers.Snapshot{}, err
	}
	var snapshot scrapers.Snapshot
	err = json.Unmarshal(data, &snapshot)
	if err != nil {
		return scrapers.Snapshot{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return snapshot, nil
}
