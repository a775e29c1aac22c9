package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/tasklane/internal/filelock"
	"github.com/twiced-technology-gmbh/tasklane/internal/normalize"
)

const (
	fileMode = 0o600
	dirMode  = 0o750
	docExt   = ".yml"
	lockName = ".lock"
)

// ReadWarning describes a document that could not be parsed during a query.
type ReadWarning struct {
	File string // path relative to the store directory
	Err  error
}

// FileStore keeps one YAML document per record under
// <dir>/<collection>/<id>.yml. Writes hold an advisory lock on <dir>/.lock.
type FileStore struct {
	dir string

	// OnWarning, if set, is called for each document skipped by Query.
	OnWarning func(ReadWarning)
}

// OpenFile opens a file store rooted at dir, creating its collection
// directories as needed.
func OpenFile(dir string) (*FileStore, error) {
	for _, c := range Collections() {
		if err := os.MkdirAll(filepath.Join(dir, c), dirMode); err != nil {
			return nil, wrapFS(fmt.Errorf("creating %s directory: %w", c, err))
		}
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *FileStore) Dir() string { return s.dir }

// Create implements Store.
func (s *FileStore) Create(ctx context.Context, collection string, doc normalize.Document) (string, error) {
	if err := s.check(ctx, collection); err != nil {
		return "", err
	}
	id := uuid.NewString()
	stored := make(normalize.Document, len(doc)+1)
	for k, v := range doc {
		stored[k] = v
	}
	stored["id"] = id

	err := s.locked(func() error {
		return s.write(collection, id, stored)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Update implements Store.
func (s *FileStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := s.check(ctx, collection); err != nil {
		return err
	}
	return s.locked(func() error {
		doc, err := s.read(s.path(collection, id))
		if err != nil {
			return err
		}
		merge(doc, fields)
		return s.write(collection, id, doc)
	})
}

// Delete implements Store.
func (s *FileStore) Delete(ctx context.Context, collection, id string) error {
	if err := s.check(ctx, collection); err != nil {
		return err
	}
	return s.locked(func() error {
		if err := os.Remove(s.path(collection, id)); err != nil {
			return wrapFS(fmt.Errorf("deleting %s/%s: %w", collection, id, err))
		}
		return nil
	})
}

// Query implements Store. Documents that cannot be parsed are skipped and
// reported through OnWarning.
func (s *FileStore) Query(ctx context.Context, collection string, q Query) ([]normalize.Document, error) {
	if err := s.check(ctx, collection); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.dir, collection)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, wrapFS(fmt.Errorf("reading %s directory: %w", collection, err))
	}

	var docs []normalize.Document
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != docExt {
			continue
		}
		doc, readErr := s.read(filepath.Join(dir, entry.Name()))
		if readErr != nil {
			if s.OnWarning != nil {
				s.OnWarning(ReadWarning{File: filepath.Join(collection, entry.Name()), Err: readErr})
			}
			continue
		}
		if _, ok := doc["id"]; !ok {
			doc["id"] = strings.TrimSuffix(entry.Name(), docExt)
		}
		if q.Matches(doc) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) check(ctx context.Context, collection string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return checkCollection(collection)
}

func (s *FileStore) path(collection, id string) string {
	return filepath.Join(s.dir, collection, filepath.Base(id)+docExt)
}

func (s *FileStore) locked(fn func() error) error {
	return filelock.With(filepath.Join(s.dir, lockName), fn)
}

func (s *FileStore) read(path string) (normalize.Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path built from the store directory
	if err != nil {
		return nil, wrapFS(fmt.Errorf("reading %s: %w", filepath.Base(path), err))
	}
	var doc normalize.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	if doc == nil {
		return nil, fmt.Errorf("parsing %s: empty document", filepath.Base(path))
	}
	return doc, nil
}

func (s *FileStore) write(collection, id string, doc normalize.Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling %s/%s: %w", collection, id, err)
	}
	path := s.path(collection, id)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, fileMode); err != nil {
		return wrapFS(fmt.Errorf("writing %s/%s: %w", collection, id, err))
	}
	if err := os.Rename(tmp, path); err != nil {
		return wrapFS(fmt.Errorf("writing %s/%s: %w", collection, id, err))
	}
	return nil
}

// wrapFS maps filesystem errors onto the store sentinels.
func wrapFS(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermission, err)
	}
	return err
}
