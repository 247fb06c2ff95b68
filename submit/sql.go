package submit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/tbxark/voiceagent/types"
	_ "modernc.org/sqlite"
)

// Message is a stored contact message.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Body      string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// SQLSubmitter stores contact messages in an inbox table.
type SQLSubmitter struct {
	db       *sql.DB
	postgres bool
}

// NewSQLiteSubmitter opens (and creates) an inbox in a SQLite file.
func NewSQLiteSubmitter(dbPath string) (*SQLSubmitter, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return newSQLSubmitter(db, false)
}

// NewPostgresSubmitter connects to the inbox in Postgres.
func NewPostgresSubmitter(connectionString string) (*SQLSubmitter, error) {
	if connectionString == "" {
		return nil, errors.New("database connection string is required")
	}
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	return newSQLSubmitter(db, true)
}

func newSQLSubmitter(db *sql.DB, postgres bool) (*SQLSubmitter, error) {
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := &SQLSubmitter{db: db, postgres: postgres}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLSubmitter) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS contact_messages (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at BIGINT NOT NULL
	)`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders for postgres.
func (s *SQLSubmitter) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLSubmitter) Submit(ctx context.Context, form types.ContactForm) error {
	if err := Validate(form); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO contact_messages (id, name, email, message, created_at) VALUES (?, ?, ?, ?, ?)`),
		uuid.NewString(), form.Name, form.Email, form.Message, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	return nil
}

// List returns stored messages, newest first.
func (s *SQLSubmitter) List(ctx context.Context, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT id, name, email, message, created_at FROM contact_messages ORDER BY created_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("query contact messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var created int64
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Body, &created); err != nil {
			return nil, fmt.Errorf("scan contact message: %w", err)
		}
		m.CreatedAt = time.Unix(created, 0)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLSubmitter) Close() error {
	return s.db.Close()
}
