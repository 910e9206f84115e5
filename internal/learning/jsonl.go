package learning

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONLStore keeps the feedback log as one self-describing JSON record per
// line in a flat file. This is the default backend: trivially inspectable,
// append-only, and durable enough for best-effort telemetry.
type JSONLStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONLStore creates a store over the given file, creating the parent
// directory if needed. The file itself is created lazily on first append.
func NewJSONLStore(path string) (*JSONLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create feedback log directory: %w", err)
	}
	return &JSONLStore{path: path}, nil
}

// Append writes one event as a single JSON line.
func (s *JSONLStore) Append(ctx context.Context, ev Event) error {
	if ev.DocPath == "" {
		return ErrEmptyDocPath
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode feedback event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open feedback log: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append feedback event: %w", err)
	}
	return nil
}

// ForEach reads the log front to back. Blank and malformed lines are
// skipped; a missing file means an empty history, not an error.
func (s *JSONLStore) ForEach(ctx context.Context, fn func(Event) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open feedback log: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read feedback log: %w", err)
	}
	return nil
}

// Reset removes the log file.
func (s *JSONLStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to reset feedback log: %w", err)
	}
	return nil
}
