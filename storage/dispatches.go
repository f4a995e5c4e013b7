package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Dispatch is one recorded overlay action: a chat message, voice-wheel
// sequence, or animation playback, with its emission metrics.
type Dispatch struct {
	ID           int64
	Timestamp    time.Time
	Kind         string
	Menu         string
	Label        string
	PayloadChars int
	FrameCount   int
	DurationMs   int64
	Success      bool
	ErrorMessage string
}

// SaveDispatch saves a dispatch record to the database
func (db *DB) SaveDispatch(d *Dispatch) error {
	query := `
		INSERT INTO dispatches (
			kind, menu, label, payload_chars, frame_count, duration_ms,
			success, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.conn.Exec(query,
		d.Kind, d.Menu, d.Label, d.PayloadChars, d.FrameCount, d.DurationMs,
		d.Success, d.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to save dispatch: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	d.ID = id
	return nil
}

// GetDispatches retrieves dispatches with pagination
func (db *DB) GetDispatches(limit, offset int) ([]Dispatch, error) {
	query := `
		SELECT
			id, timestamp, kind, menu, label, payload_chars, frame_count,
			duration_ms, success, error_message
		FROM dispatches
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.conn.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query dispatches: %w", err)
	}
	defer rows.Close()

	var dispatches []Dispatch
	for rows.Next() {
		var d Dispatch
		var errorMessage sql.NullString

		err := rows.Scan(
			&d.ID, &d.Timestamp, &d.Kind, &d.Menu, &d.Label, &d.PayloadChars,
			&d.FrameCount, &d.DurationMs, &d.Success, &errorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dispatch: %w", err)
		}

		if errorMessage.Valid {
			d.ErrorMessage = errorMessage.String
		}

		dispatches = append(dispatches, d)
	}

	return dispatches, rows.Err()
}

// DeleteDispatch deletes a dispatch by ID
func (db *DB) DeleteDispatch(id int64) error {
	query := `DELETE FROM dispatches WHERE id = ?`

	result, err := db.conn.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete dispatch: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("dispatch not found")
	}

	return nil
}

// GetDispatchCount returns the total number of dispatches
func (db *DB) GetDispatchCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM dispatches").Scan(&count)
	return count, err
}
