package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/CO2mega/12306router/pkg/traindata/models"
)

// VersionTracker manages the traindata.versions table. Each persisted
// snapshot becomes a version row; exactly one version is active at a
// time and a new one is activated only after its data is fully written.
type VersionTracker struct {
	db *DB
}

func NewVersionTracker(db *DB) *VersionTracker {
	return &VersionTracker{db: db}
}

func (vt *VersionTracker) GetActiveVersion(ctx context.Context) (*models.VersionInfo, error) {
	query := `
		SELECT version_id, version_name, snapshot_id, created_at, updated_at, is_active, source_name, description
		FROM traindata.versions
		WHERE is_active = true
		LIMIT 1
	`

	var version models.VersionInfo
	err := vt.db.conn.QueryRowContext(ctx, query).Scan(
		&version.VersionID,
		&version.VersionName,
		&version.SnapshotID,
		&version.CreatedAt,
		&version.UpdatedAt,
		&version.IsActive,
		&version.SourceName,
		&version.Description,
	)

	if err == sql.ErrNoRows {
		vt.db.logger.Info("No active version found in database")
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("querying active version: %w", err)
	}

	return &version, nil
}

func (vt *VersionTracker) CreateNewVersion(ctx context.Context, versionName, snapshotID, sourceName string, sourceModified time.Time) (int, error) {
	var versionID int
	query := `
		INSERT INTO traindata.versions (version_name, snapshot_id, updated_at, is_active, source_name, description)
		VALUES ($1, $2, $3, false, $4, $5)
		RETURNING version_id
	`

	description := fmt.Sprintf("Route data from %s modified at %s", sourceName, sourceModified.Format(time.RFC3339))
	err := vt.db.conn.QueryRowContext(ctx, query, versionName, snapshotID, sourceModified, sourceName, description).Scan(&versionID)
	if err != nil {
		return 0, fmt.Errorf("creating version: %w", err)
	}

	vt.db.logger.Info("Created new version",
		"version_id", versionID,
		"version_name", versionName,
		"snapshot_id", snapshotID)

	return versionID, nil
}

func (vt *VersionTracker) ActivateVersion(ctx context.Context, versionID int) error {
	tx, err := vt.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, "UPDATE traindata.versions SET is_active = false WHERE is_active = true")
	if err != nil {
		return fmt.Errorf("deactivating versions: %w", err)
	}

	result, err := tx.ExecContext(ctx, "UPDATE traindata.versions SET is_active = true WHERE version_id = $1", versionID)
	if err != nil {
		return fmt.Errorf("activating version: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("version %d not found", versionID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	vt.db.logger.Info("Activated version", "version_id", versionID)
	return nil
}

// PruneInactiveBefore deletes inactive versions older than the cutoff,
// cascading to their route and summary rows.
func (vt *VersionTracker) PruneInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := vt.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"traindata.routes", "traindata.city_trains"} {
		query := fmt.Sprintf(`
			DELETE FROM %s
			WHERE version_id IN (
				SELECT version_id FROM traindata.versions
				WHERE is_active = false AND created_at < $1
			)`, table)
		if _, err := tx.ExecContext(ctx, query, cutoff); err != nil {
			return 0, fmt.Errorf("pruning %s: %w", table, err)
		}
	}

	result, err := tx.ExecContext(ctx,
		"DELETE FROM traindata.versions WHERE is_active = false AND created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning versions: %w", err)
	}
	pruned, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	if pruned > 0 {
		vt.db.logger.Info("Pruned inactive versions", "versions", pruned, "cutoff", cutoff)
	}
	return pruned, nil
}
