package storage

import (
	"fmt"
)

// DailyStats represents statistics for a single day
type DailyStats struct {
	Date            string
	TotalDispatches int
	TotalFrames     int
	SuccessCount    int
	FailureCount    int
}

// KindStats represents statistics grouped by action kind
type KindStats struct {
	Kind            string
	TotalDispatches int
	TotalFrames     int
	SuccessCount    int
	FailureCount    int
	AvgDurationMs   float64
}

// OverallStats represents overall statistics
type OverallStats struct {
	TotalDispatches   int
	TotalFrames       int
	TotalPayloadChars int
	SuccessCount      int
	FailureCount      int
	AvgDurationMs     float64
	TotalDurationMs   int64
}

// GetDailyStats retrieves statistics grouped by date for the last N days
func (db *DB) GetDailyStats(days int) ([]DailyStats, error) {
	query := `
		SELECT
			DATE(timestamp) as date,
			COUNT(*) as total_dispatches,
			COALESCE(SUM(frame_count), 0) as total_frames,
			SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END) as failure_count
		FROM dispatches
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY DATE(timestamp)
		ORDER BY date DESC
	`

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []DailyStats
	for rows.Next() {
		var s DailyStats
		err := rows.Scan(&s.Date, &s.TotalDispatches, &s.TotalFrames, &s.SuccessCount, &s.FailureCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetKindStats retrieves statistics grouped by action kind for the last N days
func (db *DB) GetKindStats(days int) ([]KindStats, error) {
	query := `
		SELECT
			kind,
			COUNT(*) as total_dispatches,
			COALESCE(SUM(frame_count), 0) as total_frames,
			SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END) as failure_count,
			COALESCE(AVG(duration_ms), 0) as avg_duration_ms
		FROM dispatches
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY kind
		ORDER BY total_dispatches DESC
	`

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query kind stats: %w", err)
	}
	defer rows.Close()

	var stats []KindStats
	for rows.Next() {
		var s KindStats
		err := rows.Scan(&s.Kind, &s.TotalDispatches, &s.TotalFrames, &s.SuccessCount, &s.FailureCount, &s.AvgDurationMs)
		if err != nil {
			return nil, fmt.Errorf("failed to scan kind stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetOverallStats retrieves overall statistics for the last N days
func (db *DB) GetOverallStats(days int) (*OverallStats, error) {
	query := `
		SELECT
			COUNT(*) as total_dispatches,
			COALESCE(SUM(frame_count), 0) as total_frames,
			COALESCE(SUM(payload_chars), 0) as total_payload_chars,
			COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0) as success_count,
			COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0) as failure_count,
			COALESCE(AVG(duration_ms), 0) as avg_duration_ms,
			COALESCE(SUM(duration_ms), 0) as total_duration_ms
		FROM dispatches
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
	`

	var stats OverallStats
	err := db.conn.QueryRow(query, days).Scan(
		&stats.TotalDispatches,
		&stats.TotalFrames,
		&stats.TotalPayloadChars,
		&stats.SuccessCount,
		&stats.FailureCount,
		&stats.AvgDurationMs,
		&stats.TotalDurationMs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query overall stats: %w", err)
	}

	return &stats, nil
}
