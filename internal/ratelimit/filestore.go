package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists counts as a single JSON file. Writes go through a temp
// file + rename so a crash mid-write never corrupts the record. A process
// mutex serializes the read-modify-write; this store assumes one process
// owns the file (use RedisStore when there is more than one).
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Update(ctx context.Context, fn func(c *Counts) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counts, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(&counts); err != nil {
		return err
	}
	return s.write(counts)
}

// read loads the current counts. A missing or unreadable file yields zero
// counts rather than an error: the limiter's daily reset rebuilds state on
// the next admitted request, matching the lazy-create lifecycle.
func (s *FileStore) read() (Counts, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Counts{}, nil
		}
		return Counts{}, fmt.Errorf("read rate store: %w", err)
	}
	var counts Counts
	if err := json.Unmarshal(data, &counts); err != nil {
		// Corrupt file: start over instead of locking everyone out.
		return Counts{}, nil
	}
	return counts, nil
}

func (s *FileStore) write(counts Counts) error {
	data, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("encode rate store: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".rate-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
