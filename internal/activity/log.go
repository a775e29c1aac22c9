// Package activity keeps an append-only JSONL log of mutations.
package activity

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// FileName is the log file inside the data directory.
	FileName      = "activity.jsonl"
	logFileMode   = 0o600
	maxLogEntries = 10000 // truncate oldest entries when log exceeds this size
)

// Entry is a single activity log entry.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	TaskID    string    `json:"task_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Detail    string    `json:"detail"`
}

// Log appends entries to <dir>/activity.jsonl. A nil *Log discards
// everything.
type Log struct {
	dir string
	now func() time.Time
}

// New returns a Log writing into dir.
func New(dir string) *Log {
	return &Log{dir: dir, now: time.Now}
}

// Record appends an entry. Errors are silently discarded because logging
// should never fail a command.
func (l *Log) Record(action, taskID, userID, detail string) {
	if l == nil {
		return
	}
	_ = l.Append(Entry{
		Timestamp: l.now(),
		Action:    action,
		TaskID:    taskID,
		UserID:    userID,
		Detail:    detail,
	})
}

// Append writes entry to the log file. If the log exceeds maxLogEntries,
// the oldest entries are truncated.
func (l *Log) Append(entry Entry) error {
	path := filepath.Join(l.dir, FileName)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode) //nolint:gosec // log path from trusted data dir
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling log entry: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing log entry: %w", err)
	}

	// Truncate if needed (best-effort; errors are non-fatal).
	_ = truncateIfNeeded(path, maxLogEntries)
	return nil
}

// Tail returns up to n of the most recent entries in dir, oldest first.
// Lines that do not parse are skipped. A missing log yields no entries.
func Tail(dir string, n int) ([]Entry, error) {
	lines, err := readLines(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading activity log: %w", err)
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		var e Entry
		if json.Unmarshal([]byte(line), &e) == nil {
			entries = append(entries, e)
		}
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // trusted path
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// truncateIfNeeded rewrites the log keeping only the newest limit lines.
func truncateIfNeeded(path string, limit int) error {
	lines, err := readLines(path)
	if err != nil {
		return err
	}
	if len(lines) <= limit {
		return nil
	}
	lines = lines[len(lines)-limit:]

	var buf strings.Builder
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(buf.String()), logFileMode)
}
