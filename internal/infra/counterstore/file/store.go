package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store persists usage counters in a single JSON file, the same layout the
// admin tooling reads:
//
//	{"usage": {"2026-08-31": {"openai_requests": 3, "openai_requests_cost": 0.006}}}
//
// A process-wide mutex makes read-modify-write increments atomic, and every
// write goes through a temp file + rename so a crash never leaves a torn
// file behind.
type Store struct {
	mu   sync.Mutex
	path string
}

type fileData struct {
	Usage map[string]map[string]float64 `json:"usage"`
}

func New(path string) (*Store, error) {
	s := &Store{path: path}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.write(fileData{Usage: map[string]map[string]float64{}}); err != nil {
			return nil, fmt.Errorf("init usage file: %w", err)
		}
	}
	return s, nil
}

func (s *Store) Get(_ context.Context, day, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return 0, err
	}
	return int(data.Usage[day][key]), nil
}

func (s *Store) Increment(_ context.Context, day, key string, delta int) error {
	return s.add(day, key, float64(delta))
}

func (s *Store) AddCost(_ context.Context, day, key string, cost float64) error {
	return s.add(day, key, cost)
}

func (s *Store) DayUsage(_ context.Context, day string) (map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(data.Usage[day]))
	for k, v := range data.Usage[day] {
		out[k] = v
	}
	return out, nil
}

func (s *Store) ResetDay(_ context.Context, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}
	delete(data.Usage, day)
	return s.write(data)
}

func (s *Store) add(day, key string, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}
	if data.Usage == nil {
		data.Usage = map[string]map[string]float64{}
	}
	if data.Usage[day] == nil {
		data.Usage[day] = map[string]float64{}
	}
	data.Usage[day][key] += delta
	return s.write(data)
}

func (s *Store) read() (fileData, error) {
	var data fileData
	b, err := os.ReadFile(s.path)
	if err != nil {
		return data, err
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return data, fmt.Errorf("usage file corrupt: %w", err)
	}
	return data, nil
}

func (s *Store) write(data fileData) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
