package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File keeps all slots in one JSON object on disk and mirrors them in memory.
type File struct {
	mu       sync.RWMutex
	filePath string
	slots    map[string]string
}

// NewFile loads slots from filePath, or starts empty if the file does not
// exist. Returns an error only on unexpected I/O failures or a file that is
// not a JSON object of strings.
func NewFile(filePath string) (*File, error) {
	f := &File{filePath: filePath, slots: make(map[string]string)}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}
		return nil, fmt.Errorf("file: read %s: %w", filePath, err)
	}
	if len(data) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(data, &f.slots); err != nil {
		return nil, fmt.Errorf("file: decode %s: %w", filePath, err)
	}
	if f.slots == nil {
		f.slots = make(map[string]string)
	}
	return f, nil
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.slots[key]
	return v, ok, nil
}

// Set writes the whole slot map to disk before updating the in-memory copy,
// so a failed write leaves both unchanged.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := make(map[string]string, len(f.slots)+1)
	for k, v := range f.slots {
		next[k] = v
	}
	next[key] = value
	if err := f.writeAtomic(next); err != nil {
		return err
	}
	f.slots = next
	return nil
}

// writeAtomic writes to a temp file then renames it over filePath.
// Caller must hold f.mu.
func (f *File) writeAtomic(slots map[string]string) error {
	dir := filepath.Dir(f.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("file: %w", err)
	}

	tmp := f.filePath + ".tmp"
	data, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return fmt.Errorf("file: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("file: %w", err)
	}
	if err := os.Rename(tmp, f.filePath); err != nil {
		return fmt.Errorf("file: %w", err)
	}
	return nil
}
