package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/abgdnv/prodboard/internal/catalog"
)

// File persists the snapshot as one JSON document on disk. Writes go through
// a temp file and rename, so a crash mid-write cannot truncate the previous
// snapshot.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile returns a file-backed snapshot store writing to path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Load reads and decodes the snapshot. A missing or empty file is an empty
// catalog; a present but undecodable file is an error, since silently
// discarding a snapshot would lose data on the next save.
func (f *File) Load(_ context.Context) ([]catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []catalog.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file %s: %w", f.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []catalog.Product{}, nil
	}

	var products []catalog.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot file %s: %w", f.path, err)
	}
	if products == nil {
		products = []catalog.Product{}
	}
	return products, nil
}

// Save serializes products and atomically replaces the snapshot file.
func (f *File) Save(_ context.Context, products []catalog.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace snapshot file %s: %w", f.path, err)
	}
	return nil
}
