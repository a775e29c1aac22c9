package watcher

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/tasklane/internal/normalize"
	"github.com/twiced-technology-gmbh/tasklane/internal/store"
)

func TestPaths(t *testing.T) {
	got := Paths("/data", store.BackendFile, "")
	if len(got) != 3 || got[0] != filepath.Join("/data", store.Tasks) {
		t.Errorf("file paths = %v", got)
	}
	got = Paths("/data", store.BackendSQLite, "/db/tasklane.db")
	if len(got) != 1 || got[0] != "/db" {
		t.Errorf("sqlite paths = %v", got)
	}
}

func TestStoreWriteTriggersCallback(t *testing.T) {
	dir := t.TempDir()
	s, err := store.OpenFile(dir)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer s.Close()

	fired := make(chan struct{}, 1)
	w, err := ForStore(dir, store.BackendFile, "", func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("ForStore: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, nil)

	if _, err := s.Create(ctx, store.Tasks, normalize.Document{"title": "watch me"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("callback not invoked after store write")
	}
}

func TestIgnored(t *testing.T) {
	for name, want := range map[string]bool{
		"/d/.lock":           true,
		"/d/tasks/x.yml.tmp": true,
		"/d/tasks/x.yml":     false,
	} {
		if got := ignored(name); got != want {
			t.Errorf("ignored(%q) = %v, want %v", name, got, want)
		}
	}
}
