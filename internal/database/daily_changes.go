package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tcollier/portfolio-report/internal/models"
)

const notesSeparator = "; "

// AppendDailyChange inserts a new day-over-day delta record
func (db *DB) AppendDailyChange(c *models.DailyChange) error {
	gainers, err := json.Marshal(c.TopGainers)
	if err != nil {
		return fmt.Errorf("failed to marshal top gainers: %w", err)
	}
	losers, err := json.Marshal(c.TopLosers)
	if err != nil {
		return fmt.Errorf("failed to marshal top losers: %w", err)
	}

	notes := sql.NullString{
		String: strings.Join(c.Notes, notesSeparator),
		Valid:  len(c.Notes) > 0,
	}

	query := `
		INSERT INTO daily_changes (
			change_date, prev_date, days_between,
			value_change, value_change_pct, pl_change, div_change, return_change,
			top_gainers, top_losers, notes, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`
	err = db.conn.QueryRow(query,
		c.Date, c.PrevDate, c.DaysBetween,
		c.ValueChange, c.ValueChangePct, c.PLChange, c.DivChange, c.ReturnChange,
		gainers, losers, notes, time.Now(),
	).Scan(&c.ID, &c.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append daily change: %w", err)
	}
	return nil
}

// GetLatestDailyChange retrieves the most recent delta record, or nil when
// none has been computed yet
func (db *DB) GetLatestDailyChange() (*models.DailyChange, error) {
	query := `
		SELECT id, change_date, prev_date, days_between,
			value_change, value_change_pct, pl_change, div_change, return_change,
			top_gainers, top_losers, notes, created_at
		FROM daily_changes
		ORDER BY change_date DESC, id DESC
		LIMIT 1
	`
	var c models.DailyChange
	var gainers, losers []byte
	var notes sql.NullString

	err := db.conn.QueryRow(query).Scan(
		&c.ID, &c.Date, &c.PrevDate, &c.DaysBetween,
		&c.ValueChange, &c.ValueChangePct, &c.PLChange, &c.DivChange, &c.ReturnChange,
		&gainers, &losers, &notes, &c.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest daily change: %w", err)
	}

	if err := json.Unmarshal(gainers, &c.TopGainers); err != nil {
		return nil, fmt.Errorf("failed to parse top gainers: %w", err)
	}
	if err := json.Unmarshal(losers, &c.TopLosers); err != nil {
		return nil, fmt.Errorf("failed to parse top losers: %w", err)
	}
	if notes.Valid && notes.String != "" {
		c.Notes = strings.Split(notes.String, notesSeparator)
	}

	return &c, nil
}
