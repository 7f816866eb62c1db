// Package persist writes published snapshots to Postgres. Each snapshot
// becomes a new version; its route and summary rows are written in one
// transaction and the version is activated only after the commit, so
// readers of the database never see a partial dataset.
package persist

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/CO2mega/12306router/internal/common/db"
	"github.com/CO2mega/12306router/internal/traindata/engine"
	"github.com/CO2mega/12306router/pkg/traindata/models"
)

//go:embed schema.sql
var schemaSQL string

type Writer struct {
	db        *db.DB
	versions  *db.VersionTracker
	batchSize int
}

func NewWriter(database *db.DB) *Writer {
	return &Writer{
		db:        database,
		versions:  db.NewVersionTracker(database),
		batchSize: 1000,
	}
}

// EnsureSchema creates the traindata schema and tables if missing.
func (w *Writer) EnsureSchema(ctx context.Context) error {
	if _, err := w.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}

// Persist writes one snapshot as a new active version.
func (w *Writer) Persist(ctx context.Context, snap *engine.Snapshot, sourceName string) (int, error) {
	versionName := fmt.Sprintf("%s_%s", sourceName, snap.BuiltAt.Format("2006-01-02_15:04:05"))
	versionID, err := w.versions.CreateNewVersion(ctx, versionName, snap.ID, sourceName, snap.SourceModified)
	if err != nil {
		return 0, fmt.Errorf("creating version: %w", err)
	}

	tx, err := w.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	routeBatch := w.newBatchInserter(tx, "routes", 6)
	summaryBatch := w.newBatchInserter(tx, "city_trains", 6)

	var writeErr error
	snap.Store.Each(func(train string, route []models.StopRecord) {
		if writeErr != nil {
			return
		}
		for _, rec := range route {
			if err := routeBatch.Add(
				versionID,
				rec.TrainCode,
				rec.TrainFullCode,
				rec.Station,
				rec.Position,
				int64(rec.RunTime/time.Second),
			); err != nil {
				writeErr = err
				return
			}
		}
	})
	if writeErr != nil {
		return 0, fmt.Errorf("writing routes: %w", writeErr)
	}

	for _, row := range snap.Summary.Rows() {
		if err := summaryBatch.Add(
			versionID,
			row.City,
			row.TrainCode,
			row.TrainFullCode,
			row.IsOrigin,
			row.IsTerminal,
		); err != nil {
			return 0, fmt.Errorf("writing city_trains: %w", err)
		}
	}

	for _, batch := range []*batchInserter{routeBatch, summaryBatch} {
		if err := batch.Flush(); err != nil {
			return 0, fmt.Errorf("flushing %s batch: %w", batch.tableName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	if err := w.versions.ActivateVersion(ctx, versionID); err != nil {
		return 0, fmt.Errorf("activating version: %w", err)
	}

	w.db.Logger().Info("Snapshot persisted",
		"version_id", versionID,
		"snapshot_id", snap.ID,
		"trains", snap.Report.TrainsRetained)

	return versionID, nil
}

// Prune removes inactive versions older than maxAge.
func (w *Writer) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	return w.versions.PruneInactiveBefore(ctx, time.Now().Add(-maxAge))
}

type batchInserter struct {
	tableName  string
	columns    []string
	values     []interface{}
	valueCount int
	batchSize  int
	tx         *sql.Tx
	fieldCount int
}

func (w *Writer) newBatchInserter(tx *sql.Tx, tableName string, fieldCount int) *batchInserter {
	return &batchInserter{
		tableName:  tableName,
		columns:    getColumnsForTable(tableName),
		values:     make([]interface{}, 0, w.batchSize*fieldCount),
		batchSize:  w.batchSize,
		tx:         tx,
		fieldCount: fieldCount,
	}
}

func (b *batchInserter) Add(values ...interface{}) error {
	b.values = append(b.values, values...)
	b.valueCount++

	if b.valueCount >= b.batchSize {
		return b.Flush()
	}
	return nil
}

func (b *batchInserter) Flush() error {
	if b.valueCount == 0 {
		return nil
	}

	query := b.buildInsertQuery()
	if _, err := b.tx.Exec(query, b.values...); err != nil {
		return fmt.Errorf("executing batch insert: %w", err)
	}

	b.values = b.values[:0]
	b.valueCount = 0
	return nil
}

func (b *batchInserter) buildInsertQuery() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("INSERT INTO traindata.%s (%s) VALUES ",
		b.tableName,
		strings.Join(b.columns, ", ")))

	for i := 0; i < b.valueCount; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < b.fieldCount; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("$%d", i*b.fieldCount+j+1))
		}
		sb.WriteString(")")
	}

	sb.WriteString(" ON CONFLICT DO NOTHING")

	return sb.String()
}

func getColumnsForTable(tableName string) []string {
	switch tableName {
	case "routes":
		return []string{"version_id", "train_code", "train_full_code", "station_name", "station_no", "run_time_seconds"}
	case "city_trains":
		return []string{"version_id", "city", "train_code", "train_full_code", "is_origin", "is_terminal"}
	default:
		return nil
	}
}
