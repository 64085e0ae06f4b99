package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tcollier/portfolio-report/internal/models"
)

// AppendSnapshot inserts a new portfolio snapshot. Snapshots are append-only;
// existing rows are never updated, so reruns on the same date add a second row.
func (db *DB) AppendSnapshot(s *models.Snapshot) error {
	doc, err := json.Marshal(models.PositionsDocument{
		Version:   models.PositionsDocumentVersion,
		Positions: s.Positions,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal positions document: %w", err)
	}

	query := `
		INSERT INTO snapshots (
			run_id, snapshot_date, taken_at,
			total_value, total_cost, unrealized_pl, unrealized_pl_pct,
			dividend_income, total_return, total_return_pct,
			position_count, positions, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`
	err = db.conn.QueryRow(query,
		s.RunID, s.Date, s.Timestamp,
		s.Summary.TotalValue, s.Summary.TotalCost, s.Summary.UnrealizedPL, s.Summary.UnrealizedPLPct,
		s.Summary.DividendIncome, s.Summary.TotalReturn, s.Summary.TotalReturnPct,
		s.Summary.PositionCount, doc, time.Now(),
	).Scan(&s.ID, &s.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}
	return nil
}

// GetLatestSnapshot retrieves the most recent snapshot, or nil when the store
// is empty. Rows on the same date are broken by insertion order, so a rerun's
// snapshot shadows the earlier one.
func (db *DB) GetLatestSnapshot() (*models.Snapshot, error) {
	query := `
		SELECT id, run_id, snapshot_date, taken_at,
			total_value, total_cost, unrealized_pl, unrealized_pl_pct,
			dividend_income, total_return, total_return_pct,
			position_count, positions, created_at
		FROM snapshots
		ORDER BY snapshot_date DESC, id DESC
		LIMIT 1
	`
	var s models.Snapshot
	var doc []byte

	err := db.conn.QueryRow(query).Scan(
		&s.ID, &s.RunID, &s.Date, &s.Timestamp,
		&s.Summary.TotalValue, &s.Summary.TotalCost, &s.Summary.UnrealizedPL, &s.Summary.UnrealizedPLPct,
		&s.Summary.DividendIncome, &s.Summary.TotalReturn, &s.Summary.TotalReturnPct,
		&s.Summary.PositionCount, &doc, &s.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	var positions models.PositionsDocument
	if err := json.Unmarshal(doc, &positions); err != nil {
		return nil, fmt.Errorf("failed to parse positions document: %w", err)
	}
	if positions.Version > models.PositionsDocumentVersion {
		return nil, fmt.Errorf("unsupported positions document version %d", positions.Version)
	}
	s.Positions = positions.Positions

	return &s, nil
}

// ListTrendPoints retrieves the per-snapshot value and cost totals for the
// trailing window, oldest first
func (db *DB) ListTrendPoints(days int) ([]models.TrendPoint, error) {
	query := `
		SELECT snapshot_date, total_value, total_cost
		FROM snapshots
		WHERE snapshot_date >= CURRENT_DATE - $1::int
		ORDER BY snapshot_date ASC, id ASC
	`
	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to list trend points: %w", err)
	}
	defer rows.Close()

	var points []models.TrendPoint
	for rows.Next() {
		var p models.TrendPoint
		if err := rows.Scan(&p.Date, &p.TotalValue, &p.TotalCost); err != nil {
			return nil, fmt.Errorf("failed to scan trend point: %w", err)
		}
		points = append(points, p)
	}

	return points, nil
}

// CountSnapshotsOnDate returns how many snapshots already exist for a date
func (db *DB) CountSnapshotsOnDate(date time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM snapshots WHERE snapshot_date = $1`

	var count int
	if err := db.conn.QueryRow(query, date).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}
