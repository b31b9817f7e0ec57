package schema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// fileSource is the on-disk shape of one source: {"columns": {...}}
type fileSource struct {
	Columns map[string]string `json:"columns"`
}

// FileStore keeps the mapping document in a JSON file
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the JSON file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file the store writes to
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the document; a missing file is an empty document
func (s *FileStore) Load(ctx context.Context) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}

	var raw map[string]fileSource
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file %s: %w", s.path, err)
	}

	doc := make(Document, len(raw))
	for source, entry := range raw {
		columns := entry.Columns
		if columns == nil {
			columns = map[string]string{}
		}
		doc[source] = columns
	}
	return doc, nil
}

// Save writes the document to a temporary file in the same directory and
// renames it over the target, so readers see either the old or the new file.
func (s *FileStore) Save(ctx context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := make(map[string]fileSource, len(doc))
	for source, columns := range doc {
		raw[source] = fileSource{Columns: columns}
	}
	data, err := json.MarshalIndent(raw, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create mapping directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp mapping file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write mapping: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync mapping: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close mapping file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace mapping file: %w", err)
	}
	return nil
}
