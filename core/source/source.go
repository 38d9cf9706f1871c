// Package source loads list records from SQL result sets so widgets can page
// over live database data.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"log/slog"

	"github.com/m3rciful/pagekit/core/list"
	"github.com/m3rciful/pagekit/core/logger"
)

// Query runs the query and converts the result set into records, one map per
// row keyed by column name.
func Query(ctx context.Context, db *sqlx.DB, query string, args ...any) ([]list.Record, error) {
	start := time.Now()
	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		logger.SRC.Error("query failed",
			slog.String("event", "records.load"),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("source: query: %w", err)
	}
	records, err := FromRows(rows)
	if err != nil {
		return nil, err
	}
	logger.SRC.Debug("records loaded",
		slog.String("event", "records.load"),
		slog.Int("count", len(records)),
		slog.Duration("duration", logger.Took(start)),
	)
	return records, nil
}

// FromRows drains rows into records and closes them. Byte-slice column
// values are converted to strings so text columns render without a cast.
func FromRows(rows *sqlx.Rows) ([]list.Record, error) {
	defer rows.Close()
	var records []list.Record
	for rows.Next() {
		rec := list.Record{}
		if err := rows.MapScan(rec); err != nil {
			return nil, fmt.Errorf("source: scan row: %w", err)
		}
		for k, v := range rec {
			if b, ok := v.([]byte); ok {
				rec[k] = string(b)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("source: iterate rows: %w", err)
	}
	return records, nil
}
