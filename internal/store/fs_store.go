package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/typequiz-backend/internal/model"
)

const (
	resultsDirName   = "results"
	countersFileName = "counters.json"
)

// FSStore keeps one JSON file per result and all counters in a single file.
// It is meant for single-instance deployments without Redis.
type FSStore struct {
	dir string
	now func() time.Time

	mu sync.Mutex // guards the counters file
}

type fsCounters struct {
	Total int64            `json:"total"`
	Types map[string]int64 `json:"types"`
}

// NewFSStore creates the data directory if needed.
func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, resultsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FSStore{dir: dir, now: time.Now}, nil
}

// resultPath only accepts UUID ids so a request can never escape the data dir.
func (s *FSStore) resultPath(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrNotFound
	}
	return filepath.Join(s.dir, resultsDirName, strings.ToLower(id)+".json"), nil
}

// Save writes r with an expiry of now+ttl.
func (s *FSStore) Save(_ context.Context, r *model.StoredResult, ttl time.Duration) error {
	path, err := s.resultPath(r.ID)
	if err != nil {
		return fmt.Errorf("invalid result id %q", r.ID)
	}

	stored := *r
	if ttl > 0 {
		stored.ExpiresAt = s.now().Add(ttl)
	}

	raw, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return writeFileAtomic(path, raw)
}

// Get loads a result, treating expired files as missing and removing them.
func (s *FSStore) Get(_ context.Context, id string) (*model.StoredResult, error) {
	path, err := s.resultPath(id)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read result: %w", err)
	}

	var r model.StoredResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	if r.Expired(s.now()) {
		_ = os.Remove(path)
		return nil, ErrNotFound
	}
	return &r, nil
}

// PurgeExpired deletes every expired result file and returns how many
// were removed.
func (s *FSStore) PurgeExpired(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, resultsDirName))
	if err != nil {
		return 0, fmt.Errorf("list results: %w", err)
	}

	now := s.now()
	removed := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.dir, resultsDirName, e.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var r model.StoredResult
		if err := json.Unmarshal(raw, &r); err != nil {
			continue
		}
		if r.Expired(now) && os.Remove(path) == nil {
			removed++
		}
	}
	return removed, nil
}

// Increment bumps the total and the per-type counter.
func (s *FSStore) Increment(_ context.Context, personalityType string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.readCounters()
	if err != nil {
		return 0, err
	}
	c.Total++
	c.Types[personalityType]++

	raw, err := json.Marshal(c)
	if err != nil {
		return 0, fmt.Errorf("marshal counters: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(s.dir, countersFileName), raw); err != nil {
		return 0, err
	}
	return c.Total, nil
}

// Total returns the tests-taken counter.
func (s *FSStore) Total(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.readCounters()
	if err != nil {
		return 0, err
	}
	return c.Total, nil
}

// TypeCounts returns a copy of the per-type counters.
func (s *FSStore) TypeCounts(_ context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.readCounters()
	if err != nil {
		return nil, err
	}
	return c.Types, nil
}

func (s *FSStore) readCounters() (*fsCounters, error) {
	c := &fsCounters{Types: make(map[string]int64)}

	raw, err := os.ReadFile(filepath.Join(s.dir, countersFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("read counters: %w", err)
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("unmarshal counters: %w", err)
	}
	if c.Types == nil {
		c.Types = make(map[string]int64)
	}
	return c, nil
}

// writeFileAtomic writes to a temp file in the same directory and renames it
// over path, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
