package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dohr-michael/tinychat/internal/conversation"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps conversations as rows of a single table. The document
// column holds exactly what Encode produces.
type SQLiteStore struct {
	db      *sql.DB
	timeout time.Duration
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db, timeout: 5 * time.Second}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS conversations (
		key TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Load returns the conversation stored under key.
func (s *SQLiteStore) Load(key string) (*conversation.Conversation, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var document string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM conversations WHERE key = ?`, key,
	).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &ReadError{Key: key, Err: ErrNotFound}
	}
	if err != nil {
		return nil, &ReadError{Key: key, Err: fmt.Errorf("query conversation: %w", err)}
	}

	conv, err := Decode([]byte(document))
	if err != nil {
		return nil, &ReadError{Key: key, Err: err}
	}
	return conv, nil
}

// Save upserts the conversation under key.
func (s *SQLiteStore) Save(key string, conv *conversation.Conversation) error {
	data, err := Encode(conv)
	if err != nil {
		return &WriteError{Key: key, Err: err}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (key, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at
	`, key, string(data), time.Now().Unix())
	if err != nil {
		return &WriteError{Key: key, Err: fmt.Errorf("upsert conversation: %w", err)}
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
