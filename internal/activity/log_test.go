package activity

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestRecordAndTail(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	for i := range 5 {
		l.Record("update", "t"+strconv.Itoa(i), "u1", "field changed")
	}

	entries, err := Tail(dir, 2)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(entries) != 2 || entries[0].TaskID != "t3" || entries[1].TaskID != "t4" {
		t.Errorf("Tail = %+v, want t3 and t4", entries)
	}
	if entries[1].UserID != "u1" || entries[1].Action != "update" {
		t.Errorf("entry = %+v", entries[1])
	}
}

func TestTailSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	content := "{\"action\":\"create\",\"task_id\":\"a\",\"detail\":\"\"}\nnot json\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	entries, err := Tail(dir, 0)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(entries) != 1 || entries[0].TaskID != "a" {
		t.Errorf("Tail = %+v", entries)
	}
}

func TestTailMissingLog(t *testing.T) {
	entries, err := Tail(t.TempDir(), 10)
	if err != nil || len(entries) != 0 {
		t.Errorf("Tail on empty dir = %v, %v", entries, err)
	}
}

func TestTruncateKeepsNewest(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	content := "1\n2\n3\n4\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := truncateIfNeeded(path, 2); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "3\n4\n" {
		t.Errorf("log = %q", data)
	}
}

func TestNilLogIsNoop(t *testing.T) {
	var l *Log
	l.Record("create", "x", "", "")
}
