package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/CO2mega/12306router/internal/common/logger"
	"github.com/CO2mega/12306router/pkg/traindata/models"
)

// SQLiteReader reads the legacy extract format: a SQLite file with a
// train_routes table. Rows stream in id order so that the earliest
// inserted row wins deduplication, matching the legacy cleanup behavior.
type SQLiteReader struct {
	path   string
	logger logger.Logger
}

func NewSQLiteReader(path string, logger logger.Logger) *SQLiteReader {
	return &SQLiteReader{path: path, logger: logger}
}

func (r *SQLiteReader) ReadStops(ctx context.Context, fn func(models.RawStopRecord) error) error {
	conn, err := sql.Open("sqlite", r.path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("opening sqlite extract: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, `
		SELECT train_code, COALESCE(train_full_code, ''), station_name, station_no
		FROM train_routes
		ORDER BY id`)
	if err != nil {
		return fmt.Errorf("querying train_routes: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var raw models.RawStopRecord
		if err := rows.Scan(&raw.TrainCode, &raw.TrainFullCode, &raw.StationText, &raw.Position); err != nil {
			return fmt.Errorf("scanning row: %w", err)
		}
		if err := fn(raw); err != nil {
			return err
		}

		count++
		if count%10000 == 0 {
			r.logger.Debug("Progress", "path", r.path, "records", count)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating rows: %w", err)
	}

	r.logger.Info("SQLite extract read", "path", r.path, "records", count)
	return nil
}
