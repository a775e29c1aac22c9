package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/tasklane/internal/normalize"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	fileStore, err := OpenFile(t.TempDir())
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	sqliteStore, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() {
		_ = fileStore.Close()
		_ = sqliteStore.Close()
	})
	return map[string]Store{BackendFile: fileStore, BackendSQLite: sqliteStore}
}

func TestCreateUpdateDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	due := time.Date(2023, 12, 1, 15, 0, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			id, err := s.Create(ctx, Tasks, normalize.Document{
				"userId":  "u1",
				"title":   "Trash 3pm",
				"dueDate": due,
				"order":   2,
				"tags":    []any{"g1"},
			})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if id == "" {
				t.Fatal("expected an assigned ID")
			}

			if err := s.Update(ctx, Tasks, id, map[string]any{"completed": true, "dueDate": nil}); err != nil {
				t.Fatalf("Update: %v", err)
			}

			docs, err := s.Query(ctx, Tasks, Query{Owner: "u1"})
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if len(docs) != 1 {
				t.Fatalf("got %d documents, want 1", len(docs))
			}
			got := normalize.Task(docs[0], time.Now())
			if got.ID != id || !got.Completed || got.DueDate != nil || got.Order != 2 || !slices.Equal(got.Tags, []string{"g1"}) {
				t.Errorf("normalized task = %+v", got)
			}

			if err := s.Delete(ctx, Tasks, id); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := s.Delete(ctx, Tasks, id); !errors.Is(err, ErrNotFound) {
				t.Errorf("second Delete = %v, want ErrNotFound", err)
			}
			if err := s.Update(ctx, Tasks, id, map[string]any{"title": "x"}); !errors.Is(err, ErrNotFound) {
				t.Errorf("Update of deleted = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestTimestampsSurviveStorage(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2023, 11, 20, 9, 30, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Create(ctx, Tasks, normalize.Document{
				"userId":    "u1",
				"title":     "Epoch",
				"createdAt": created,
				"updatedAt": created.UnixMilli(),
			})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			docs, err := s.Query(ctx, Tasks, Query{})
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			got := normalize.Task(docs[0], time.Now())
			if !got.CreatedAt.Equal(created) || !got.UpdatedAt.Equal(created) {
				t.Errorf("createdAt/updatedAt = %v/%v, want %v", got.CreatedAt, got.UpdatedAt, created)
			}
		})
	}
}

func TestQueryScopesToOwnerAndShares(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			mine, _ := s.Create(ctx, Tasks, normalize.Document{"userId": "me", "title": "mine"})
			shared, _ := s.Create(ctx, Tasks, normalize.Document{
				"userId":     "other",
				"title":      "shared",
				"sharedWith": []any{map[string]any{"email": "me@example.com", "role": "viewer"}},
			})
			_, _ = s.Create(ctx, Tasks, normalize.Document{"userId": "other", "title": "private"})

			docs, err := s.Query(ctx, Tasks, Query{Owner: "me", SharedWith: "me@example.com"})
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			var got []string
			for _, d := range docs {
				got = append(got, d["id"].(string))
			}
			slices.Sort(got)
			want := []string{mine, shared}
			slices.Sort(want)
			if !slices.Equal(got, want) {
				t.Errorf("Query = %v, want %v", got, want)
			}

			all, _ := s.Query(ctx, Tasks, Query{})
			if len(all) != 3 {
				t.Errorf("unscoped Query returned %d documents, want 3", len(all))
			}
		})
	}
}

func TestCollectionsAreSeparate(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Create(ctx, Tags, normalize.Document{"userId": "me", "name": "urgent"}); err != nil {
				t.Fatalf("Create: %v", err)
			}
			docs, _ := s.Query(ctx, Categories, Query{Owner: "me"})
			if len(docs) != 0 {
				t.Errorf("categories = %v, want none", docs)
			}
			if _, err := s.Query(ctx, "users", Query{}); err == nil {
				t.Error("expected unknown collection to fail")
			}
		})
	}
}

func TestFileStoreSkipsMalformedDocuments(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenFile(dir)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, err := s.Create(context.Background(), Tasks, normalize.Document{"title": "good"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, Tasks, "broken.yml"), []byte("title: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}

	var warnings []ReadWarning
	s.OnWarning = func(w ReadWarning) { warnings = append(warnings, w) }

	docs, err := s.Query(context.Background(), Tasks, Query{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 1 || len(warnings) != 1 {
		t.Errorf("got %d docs and %d warnings, want 1 and 1", len(docs), len(warnings))
	}
	if len(warnings) == 1 && warnings[0].File != filepath.Join(Tasks, "broken.yml") {
		t.Errorf("warning file = %q", warnings[0].File)
	}
}

func TestSQLiteStoreSkipsMalformedDocuments(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	good, err := s.Create(ctx, Tasks, normalize.Document{"userId": "u1", "title": "good"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for id, body := range map[string]string{"array": "[1,2]", "broken": "{not json", "null": "null"} {
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO documents (collection, id, owner, body) VALUES (?, ?, ?, ?)", Tasks, id, "u1", body)
		if err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	var warnings []ReadWarning
	s.OnWarning = func(w ReadWarning) { warnings = append(warnings, w) }

	for _, q := range []Query{{Owner: "u1"}, {Owner: "u1", SharedWith: "me@example.com"}} {
		warnings = nil
		docs, err := s.Query(ctx, Tasks, q)
		if err != nil {
			t.Fatalf("Query(%+v): %v", q, err)
		}
		if len(docs) != 1 || docs[0]["id"] != good {
			t.Errorf("Query(%+v) = %v, want only %s", q, docs, good)
		}
		var skipped []string
		for _, w := range warnings {
			skipped = append(skipped, w.File)
		}
		slices.Sort(skipped)
		if want := []string{"array", "broken", "null"}; !slices.Equal(skipped, want) {
			t.Errorf("Query(%+v) warned about %v, want %v", q, skipped, want)
		}
	}
}

func TestFileStoreHonorsCanceledContext(t *testing.T) {
	s, err := OpenFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Create(ctx, Tasks, normalize.Document{"title": "x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Create = %v, want context.Canceled", err)
	}
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	if _, err := Open("mongo", t.TempDir(), ""); err == nil {
		t.Error("expected unknown backend to fail")
	}
}
