package channel

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteSchema is applied on open. The seq column preserves arrival order
// across restarts.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS messages (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT    NOT NULL UNIQUE,
	sender     TEXT    NOT NULL,
	recipient  TEXT    NOT NULL,
	type       TEXT    NOT NULL,
	content    TEXT    NOT NULL,
	created_at INTEGER NOT NULL
);
`

// SQLiteStore persists the message log in a local SQLite database so the
// audit trail survives process restarts.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the message log at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open message log: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply message log schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, msg Message) error {
	content, err := json.Marshal(msg.Content)
	if err != nil {
		return fmt.Errorf("encode message content: %w", err)
	}
	query := `INSERT INTO messages (id, sender, recipient, type, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		msg.ID, msg.From, msg.To, string(msg.Type), string(content), msg.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// All implements Store.
func (s *SQLiteStore) All(ctx context.Context) ([]Message, error) {
	query := `SELECT id, sender, recipient, type, content, created_at FROM messages ORDER BY seq`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select messages: %w", err)
	}
	defer rows.Close()

	var result []Message
	for rows.Next() {
		msg, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Message, bool, error) {
	query := `SELECT id, sender, recipient, type, content, created_at FROM messages WHERE id = ?`
	row := s.db.QueryRowContext(ctx, query, id)
	msg, err := scanMessage(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Message{}, false, nil
	}
	if err != nil {
		return Message{}, false, err
	}
	return msg, true, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanMessage(scan func(dest ...any) error) (Message, error) {
	var (
		msg       Message
		typ       string
		content   string
		createdAt int64
	)
	if err := scan(&msg.ID, &msg.From, &msg.To, &typ, &content, &createdAt); err != nil {
		return Message{}, err
	}
	msg.Type = Type(typ)
	msg.Timestamp = time.UnixMilli(createdAt).UTC()
	if err := json.Unmarshal([]byte(content), &msg.Content); err != nil {
		return Message{}, fmt.Errorf("decode message content: %w", err)
	}
	return msg, nil
}
