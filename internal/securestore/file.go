package securestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const fileVersion = 1

type fileDoc struct {
	Version int               `json:"version"`
	Items   map[string][]byte `json:"items"`
}

// FileStore keeps sealed values in a single JSON document. Every mutation
// rewrites the document through a temp file and rename, so a crash leaves
// either the old or the new document on disk.
type FileStore struct {
	path   string
	sealer *Sealer

	mu sync.Mutex
}

func NewFileStore(path string, sealer *Sealer) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("securestore: file path required")
	}
	if sealer == nil {
		return nil, errors.New("securestore: sealer required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("securestore: mkdir: %w", err)
	}
	return &FileStore{path: path, sealer: sealer}, nil
}

func (f *FileStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return "", err
	}
	sealed, ok := doc.Items[key]
	if !ok {
		return "", ErrNotFound
	}
	plain, err := f.sealer.Open(sealed)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func (f *FileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sealed, err := f.sealer.Seal([]byte(value))
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return err
	}
	doc.Items[key] = sealed
	return f.save(doc)
}

func (f *FileStore) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return err
	}
	changed := false
	for _, k := range keys {
		if _, ok := doc.Items[k]; ok {
			delete(doc.Items, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return f.save(doc)
}

func (f *FileStore) Close() error { return nil }

func (f *FileStore) load() (*fileDoc, error) {
	doc := &fileDoc{Version: fileVersion, Items: map[string][]byte{}}
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("securestore: read: %w", err)
	}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("securestore: decode %s: %w", f.path, err)
	}
	if doc.Items == nil {
		doc.Items = map[string][]byte{}
	}
	return doc, nil
}

func (f *FileStore) save(doc *fileDoc) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("securestore: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("securestore: write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
