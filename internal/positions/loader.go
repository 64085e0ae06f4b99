package positions

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tcollier/portfolio-report/internal/models"
)

// ErrEmptySource indicates the holdings file contained no usable rows.
// An empty portfolio definition is a configuration error, not a valid
// zero-position state.
var ErrEmptySource = errors.New("position source has no valid rows")

const dateLayout = "01/02/2006" // mm/dd/yyyy

// LoadFile reads the holdings CSV from disk.
func LoadFile(path string, log zerolog.Logger) ([]models.Position, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open positions file %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f, log)
}

// Parse reads positions from CSV data with the fixed header
// Symbol,Shares,PurchaseDate. Rows that cannot be parsed are logged and
// skipped; a duplicate ticker keeps the first row seen.
func Parse(r io.Reader, log zerolog.Logger) ([]models.Position, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Header row is fixed; the first data row begins the set.
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, ErrEmptySource
		}
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	var out []models.Position
	seen := make(map[string]bool)
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("Skipping unreadable row")
			continue
		}
		if len(record) < 3 {
			log.Warn().Int("line", line).Int("fields", len(record)).Msg("Skipping short row")
			continue
		}

		ticker := strings.ToUpper(strings.TrimSpace(record[0]))
		if ticker == "" {
			log.Warn().Int("line", line).Msg("Skipping row with empty ticker")
			continue
		}
		if seen[ticker] {
			log.Warn().Int("line", line).Str("ticker", ticker).Msg("Skipping duplicate ticker, keeping first lot")
			continue
		}

		quantity, err := decimal.NewFromString(strings.TrimSpace(record[1]))
		if err != nil || !quantity.IsPositive() {
			log.Warn().Int("line", line).Str("ticker", ticker).Str("shares", record[1]).Msg("Skipping row with invalid share count")
			continue
		}

		purchaseDate, err := time.Parse(dateLayout, strings.TrimSpace(record[2]))
		if err != nil {
			log.Warn().Int("line", line).Str("ticker", ticker).Str("date", record[2]).Msg("Skipping row with unparseable purchase date")
			continue
		}

		seen[ticker] = true
		out = append(out, models.Position{
			Ticker:       ticker,
			Quantity:     quantity,
			PurchaseDate: purchaseDate,
		})
	}

	if len(out) == 0 {
		return nil, ErrEmptySource
	}
	return out, nil
}
