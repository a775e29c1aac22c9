// Package store persists task, category and tag documents. Documents are
// loosely typed maps; callers run them through the normalizer on read.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/twiced-technology-gmbh/tasklane/internal/normalize"
)

// Collection names.
const (
	Tasks      = "tasks"
	Categories = "categories"
	Tags       = "tags"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var (
	// ErrNotFound is returned when a document ID does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrPermission is returned when the backing storage refuses access.
	ErrPermission = errors.New("permission denied")
)

// Query selects documents owned by Owner or shared with the SharedWith
// email. Empty fields do not restrict; a zero Query matches everything.
type Query struct {
	Owner      string
	SharedWith string
}

// Store is the persistence boundary. Every operation may fail.
type Store interface {
	// Create inserts doc, assigns it a new opaque ID and returns it.
	Create(ctx context.Context, collection string, doc normalize.Document) (string, error)
	// Update merges fields into the top level of the document. A nil value
	// removes the field.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes the document.
	Delete(ctx context.Context, collection, id string) error
	// Query returns the raw documents of collection matching q.
	Query(ctx context.Context, collection string, q Query) ([]normalize.Document, error)
	// Close releases resources held by the store.
	Close() error
}

// Collections returns every collection name.
func Collections() []string {
	return []string{Tasks, Categories, Tags}
}

// Open opens the configured backend rooted at dir. path is the sqlite file,
// relative to dir unless absolute; it is ignored by the file backend.
func Open(backend, dir, path string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return OpenFile(dir)
	case BackendSQLite:
		if path == "" {
			path = "tasklane.db"
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		return OpenSQLite(path)
	}
	return nil, fmt.Errorf("unknown store backend %q", backend)
}

// Matches reports whether doc satisfies q.
func (q Query) Matches(doc normalize.Document) bool {
	if q.Owner == "" && q.SharedWith == "" {
		return true
	}
	if q.Owner != "" {
		if owner, _ := doc["userId"].(string); owner == q.Owner {
			return true
		}
	}
	return q.SharedWith != "" && sharedWith(doc, q.SharedWith)
}

func sharedWith(doc normalize.Document, email string) bool {
	list, _ := doc["sharedWith"].([]any)
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			if e, _ := m["email"].(string); e == email {
				return true
			}
		}
	}
	return false
}

// merge applies fields onto doc in place. id is never overwritten.
func merge(doc normalize.Document, fields map[string]any) {
	for k, v := range fields {
		if k == "id" {
			continue
		}
		if v == nil {
			delete(doc, k)
		} else {
			doc[k] = v
		}
	}
}

func checkCollection(collection string) error {
	if slices.Contains(Collections(), collection) {
		return nil
	}
	return fmt.Errorf("unknown collection %q", collection)
}
