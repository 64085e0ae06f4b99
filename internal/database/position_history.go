package database

import (
	"fmt"
	"time"

	"github.com/tcollier/portfolio-report/internal/models"
)

// AppendPositionHistory inserts one history row per position for a snapshot
// date inside a single transaction
func (db *DB) AppendPositionHistory(date time.Time, metrics []models.PositionMetrics) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO position_history (
			snapshot_date, ticker, quantity, price,
			market_value, unrealized_pl, unrealized_pl_pct, dividend_income, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, m := range metrics {
		_, err := stmt.Exec(
			date, m.Ticker, m.Quantity, m.CurrentPrice,
			m.MarketValue, m.UnrealizedPL, m.UnrealizedPLPct, m.DividendIncome, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert position history for %s: %w", m.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPositionHistoryByDate retrieves all per-position rows for a snapshot date
func (db *DB) GetPositionHistoryByDate(date time.Time) ([]models.PositionHistoryRow, error) {
	query := `
		SELECT id, snapshot_date, ticker, quantity, price,
			market_value, unrealized_pl, unrealized_pl_pct, dividend_income, created_at
		FROM position_history
		WHERE snapshot_date = $1
		ORDER BY ticker ASC
	`
	rows, err := db.conn.Query(query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get position history: %w", err)
	}
	defer rows.Close()

	var history []models.PositionHistoryRow
	for rows.Next() {
		var r models.PositionHistoryRow
		err := rows.Scan(
			&r.ID, &r.SnapshotDate, &r.Ticker, &r.Quantity, &r.Price,
			&r.MarketValue, &r.UnrealizedPL, &r.UnrealizedPLPct, &r.DividendIncome, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position history: %w", err)
		}
		history = append(history, r)
	}

	return history, nil
}

// GetPositionHistoryByTicker retrieves the trailing history rows for one
// ticker, newest first
func (db *DB) GetPositionHistoryByTicker(ticker string, limit int) ([]models.PositionHistoryRow, error) {
	query := `
		SELECT id, snapshot_date, ticker, quantity, price,
			market_value, unrealized_pl, unrealized_pl_pct, dividend_income, created_at
		FROM position_history
		WHERE ticker = $1
		ORDER BY snapshot_date DESC, id DESC
		LIMIT $2
	`
	rows, err := db.conn.Query(query, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get position history for %s: %w", ticker, err)
	}
	defer rows.Close()

	var history []models.PositionHistoryRow
	for rows.Next() {
		var r models.PositionHistoryRow
		err := rows.Scan(
			&r.ID, &r.SnapshotDate, &r.Ticker, &r.Quantity, &r.Price,
			&r.MarketValue, &r.UnrealizedPL, &r.UnrealizedPLPct, &r.DividendIncome, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position history: %w", err)
		}
		history = append(history, r)
	}

	return history, nil
}
