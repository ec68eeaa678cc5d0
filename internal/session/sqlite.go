package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteStore persists session state in the gatewright database. Hook
// commands run as short-lived processes, so the touched set has to
// survive across invocations within one agent session.
//
// Besides the Store contract it keeps an audit trail of every gate
// decision taken during a session.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store on an open database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Reset discards all prior state for the session and starts it fresh.
func (s *SQLiteStore) Reset(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin session reset: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE session_id=?`, sessionID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete session: %w", err)
	}
	startedAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, `INSERT INTO sessions(session_id, started_at) VALUES(?, ?)`, sessionID, startedAt); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session reset: %w", err)
	}
	return nil
}

// RecordTouched adds a path to the session's touched set.
func (s *SQLiteStore) RecordTouched(ctx context.Context, sessionID, path string) error {
	if err := s.ensureSession(ctx, sessionID); err != nil {
		return err
	}
	touchedAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO touched_artifacts(session_id, path, touched_at) VALUES(?, ?, ?)`,
		sessionID, path, touchedAt); err != nil {
		return fmt.Errorf("insert touched artifact: %w", err)
	}
	return nil
}

// HasTouched reports membership in the session's touched set.
func (s *SQLiteStore) HasTouched(ctx context.Context, sessionID, path string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT 1 FROM touched_artifacts WHERE session_id=? AND path=?`, sessionID, path)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("read touched artifact: %w", err)
	}
	return true, nil
}

// Touched lists the session's touched paths in insertion order.
func (s *SQLiteStore) Touched(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM touched_artifacts WHERE session_id=? ORDER BY touched_at, path`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query touched artifacts: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scan touched artifact: %w", err)
		}
		out = append(out, path)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate touched artifacts: %w", err)
	}
	return out, nil
}

// DecisionRecord is one audited gate decision.
type DecisionRecord struct {
	Seq       int
	Timestamp string
	Phase     string
	Action    string
	Path      string
	Verdict   string
	Fault     string
	Reason    string
}

// RecordDecision appends a decision to the session's audit trail.
func (s *SQLiteStore) RecordDecision(ctx context.Context, sessionID string, rec DecisionRecord) error {
	if err := s.ensureSession(ctx, sessionID); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin record decision: %w", err)
	}
	seq, err := nextSeq(ctx, tx, sessionID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	ts := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, `INSERT INTO decisions(session_id, seq, ts, phase, action, path, verdict, fault, reason)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, seq, ts, rec.Phase, rec.Action, nullableString(rec.Path), rec.Verdict, nullableString(rec.Fault), nullableString(rec.Reason)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert decision: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record decision: %w", err)
	}
	return nil
}

// Decisions lists the session's audit trail in decision order.
func (s *SQLiteStore) Decisions(ctx context.Context, sessionID string) ([]DecisionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT seq, ts, phase, action, path, verdict, fault, reason
		FROM decisions WHERE session_id=? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()
	var out []DecisionRecord
	for rows.Next() {
		var rec DecisionRecord
		var path, fault, reason sql.NullString
		if err := rows.Scan(&rec.Seq, &rec.Timestamp, &rec.Phase, &rec.Action, &path, &rec.Verdict, &fault, &reason); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		rec.Path = path.String
		rec.Fault = fault.String
		rec.Reason = reason.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}
	return out, nil
}

// SessionInfo is a session row for listing.
type SessionInfo struct {
	ID        string
	StartedAt string
}

// Sessions lists known sessions, most recent first.
func (s *SQLiteStore) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id, started_at FROM sessions ORDER BY started_at DESC, session_id`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()
	var out []SessionInfo
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.ID, &info.StartedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// ensureSession creates the session row if the runtime never delivered a
// session-start event. State still scopes to the session id.
func (s *SQLiteStore) ensureSession(ctx context.Context, sessionID string) error {
	startedAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO sessions(session_id, started_at) VALUES(?, ?)`, sessionID, startedAt); err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}
	return nil
}

func nextSeq(ctx context.Context, tx *sql.Tx, sessionID string) (int, error) {
	row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM decisions WHERE session_id=?`, sessionID)
	var seq int
	if err := row.Scan(&seq); err != nil {
		return 0, fmt.Errorf("read decision seq: %w", err)
	}
	return seq + 1, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
