package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/twiced-technology-gmbh/tasklane/internal/normalize"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLiteStore keeps every document as a JSON body in a single table.
type SQLiteStore struct {
	db *sql.DB

	// OnWarning, if set, is called for each row skipped by Query.
	// File carries the document ID.
	OnWarning func(ReadWarning)
}

// OpenSQLite opens (and if needed creates) the database at path. Use
// ":memory:" for a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := applySchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Create implements Store.
func (s *SQLiteStore) Create(ctx context.Context, collection string, doc normalize.Document) (string, error) {
	if err := checkCollection(collection); err != nil {
		return "", err
	}
	id := uuid.NewString()
	stored := make(normalize.Document, len(doc)+1)
	for k, v := range doc {
		stored[k] = v
	}
	stored["id"] = id

	body, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("encode %s document: %w", collection, err)
	}
	owner, _ := stored["userId"].(string)
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (collection, id, owner, body) VALUES (?, ?, ?, ?)",
		collection, id, owner, string(body))
	if err != nil {
		return "", fmt.Errorf("insert %s document: %w", collection, err)
	}
	return id, nil
}

// Update implements Store.
func (s *SQLiteStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var body string
	err = tx.QueryRowContext(ctx,
		"SELECT body FROM documents WHERE collection = ? AND id = ?", collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if err != nil {
		return fmt.Errorf("load %s/%s: %w", collection, id, err)
	}

	doc, err := decode(body)
	if err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	merge(doc, fields)
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	owner, _ := doc["userId"].(string)

	_, err = tx.ExecContext(ctx,
		"UPDATE documents SET body = ?, owner = ?, updated_at = ? WHERE collection = ? AND id = ?",
		string(encoded), owner, time.Now().UTC(), collection, id)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return tx.Commit()
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE collection = ? AND id = ?", collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return nil
}

// Query implements Store. Sharing is matched inside the JSON body.
// Rows whose body does not decode to a document are skipped and
// reported through OnWarning.
func (s *SQLiteStore) Query(ctx context.Context, collection string, q Query) ([]normalize.Document, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	query := "SELECT id, body FROM documents WHERE collection = ?"
	args := []any{collection}
	switch {
	case q.Owner != "" && q.SharedWith != "":
		query += " AND (owner = ? OR " + sharedClause + ")"
		args = append(args, q.Owner, q.SharedWith)
	case q.Owner != "":
		query += " AND owner = ?"
		args = append(args, q.Owner)
	case q.SharedWith != "":
		query += " AND " + sharedClause
		args = append(args, q.SharedWith)
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []normalize.Document
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		doc, err := decode(body)
		if err != nil {
			if s.OnWarning != nil {
				s.OnWarning(ReadWarning{File: id, Err: err})
			}
			continue
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	return docs, nil
}

// sharedClause only reaches json_each for valid bodies; json_each raises
// on malformed JSON. CASE evaluates its branches lazily.
const sharedClause = "CASE WHEN json_valid(documents.body) THEN EXISTS (" +
	"SELECT 1 FROM json_each(documents.body, '$.sharedWith') " +
	"WHERE json_extract(json_each.value, '$.email') = ?) ELSE 0 END"

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// decode parses a JSON body keeping numbers as json.Number, so epoch
// timestamps reach the normalizer as numbers rather than float64.
func decode(body string) (normalize.Document, error) {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var doc normalize.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("document body is null")
	}
	return doc, nil
}
