package seed

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"CupSentinel/internal/model"
)

// SQLiteLoader reads the price_history table:
//
//	price_history(symbol TEXT, timestamp INTEGER, price REAL, volume REAL)
//
// symbol may be a ticker or a company name; timestamp is unix seconds.
type SQLiteLoader struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLiteLoader opens the database read-only.
func NewSQLiteLoader(dbPath string, log zerolog.Logger) (*SQLiteLoader, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	log.Info().Str("path", dbPath).Msg("sqlite seed opened")
	return &SQLiteLoader{db: db, log: log}, nil
}

func (l *SQLiteLoader) Load(ctx context.Context) ([]Row, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT symbol, timestamp, price, COALESCE(volume, 0)
		 FROM price_history ORDER BY timestamp`)
	if err != nil {
		return nil, fmt.Errorf("query price_history: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			symbol string
			ts     int64
			price  float64
			volume float64
		)
		if err := rows.Scan(&symbol, &ts, &price, &volume); err != nil {
			return nil, fmt.Errorf("scan price_history: %w", err)
		}
		c, _ := model.ParseCompany(symbol)
		out = append(out, Row{
			Company: c,
			Symbol:  symbol,
			Point:   model.PricePoint{Time: time.Unix(ts, 0).UTC(), Price: price, Volume: volume},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read price_history: %w", err)
	}
	l.log.Debug().Int("rows", len(out)).Msg("price_history read")
	return out, nil
}

func (l *SQLiteLoader) Close() error {
	return l.db.Close()
}
