// Package journal appends closed sleep intervals to a sqlite database for
// offline analysis. Nothing is ever loaded back into the running bot.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sleep_bot/internal/timelog"

	_ "modernc.org/sqlite"
)

// Entry is one journaled interval.
type Entry struct {
	ID             int64
	ConversationID string
	Interval       timelog.Interval
	RecordedAt     time.Time
}

type Journal struct {
	db  *sql.DB
	now func() time.Time
}

func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	// sqlite allows a single writer; serialize through one connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}

	j := &Journal{db: db, now: time.Now}
	if err := j.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}

	return j, nil
}

func (j *Journal) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS intervals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		stopped_at INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		recorded_at TEXT NOT NULL
	)
	`
	if _, err := j.db.Exec(query); err != nil {
		return err
	}

	_, err := j.db.Exec("CREATE INDEX IF NOT EXISTS intervals_conversation ON intervals (conversation_id, started_at)")
	return err
}

// Record stores a closed interval. Open intervals are rejected.
func (j *Journal) Record(ctx context.Context, conversationID string, interval timelog.Interval) error {
	if interval.Open() {
		return fmt.Errorf("record interval for %s: interval still open", conversationID)
	}

	_, err := j.db.ExecContext(
		ctx,
		"INSERT INTO intervals (conversation_id, started_at, stopped_at, elapsed_ms, recorded_at) VALUES (?, ?, ?, ?, ?)",
		conversationID,
		interval.StartedAt,
		interval.StoppedAt,
		interval.Elapsed(),
		j.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record interval for %s: %w", conversationID, err)
	}
	return nil
}

func (j *Journal) ListByConversation(ctx context.Context, conversationID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(
		ctx,
		"SELECT id, conversation_id, started_at, stopped_at, recorded_at FROM intervals WHERE conversation_id = ? ORDER BY started_at, id",
		conversationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var recordedAt string
		if err := rows.Scan(&e.ID, &e.ConversationID, &e.Interval.StartedAt, &e.Interval.StoppedAt, &recordedAt); err != nil {
			return nil, err
		}
		e.Interval.Stopped = true
		e.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// TotalByConversation sums the journaled sleep of one conversation in
// milliseconds.
func (j *Journal) TotalByConversation(ctx context.Context, conversationID string) (int64, error) {
	var total int64
	err := j.db.QueryRowContext(
		ctx,
		"SELECT COALESCE(SUM(elapsed_ms), 0) FROM intervals WHERE conversation_id = ?",
		conversationID,
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}
