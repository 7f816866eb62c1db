// Package engine assembles and publishes snapshots. A snapshot is one
// coherent build of store + index + summary; queries always dereference
// the current snapshot through a single atomic pointer, so readers see
// either the complete old build or the complete new one.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/CO2mega/12306router/internal/common/logger"
	"github.com/CO2mega/12306router/internal/traindata/alias"
	"github.com/CO2mega/12306router/internal/traindata/canonical"
	"github.com/CO2mega/12306router/internal/traindata/index"
	"github.com/CO2mega/12306router/internal/traindata/query"
	"github.com/CO2mega/12306router/internal/traindata/source"
	"github.com/CO2mega/12306router/internal/traindata/store"
	"github.com/CO2mega/12306router/internal/traindata/summary"
	"github.com/CO2mega/12306router/pkg/traindata/models"
)

var ErrNoSnapshot = errors.New("no snapshot published yet")

// Snapshot is one published build. All fields are immutable once the
// snapshot is visible to readers.
type Snapshot struct {
	ID             string
	BuiltAt        time.Time
	SourceModified time.Time
	Store          *store.Store
	Index          *index.Index
	Summary        *summary.Table
	Report         models.LoadReport
}

type Engine struct {
	aliases *alias.Table
	logger  logger.Logger
	current atomic.Pointer[Snapshot]
}

func New(aliases *alias.Table, logger logger.Logger) *Engine {
	return &Engine{aliases: aliases, logger: logger}
}

// Draft is a half-built snapshot. It is private to the rebuild task and
// can be annotated before Publish makes it visible; abandoning a draft
// never affects live queries.
type Draft struct {
	engine         *Engine
	store          *store.Store
	report         models.LoadReport
	sourceModified time.Time
}

// BeginLoad reads and canonicalizes a source, bulk-loads the store and
// returns a draft. Row-level problems land in the report; only a load
// with zero valid trains fails.
func (e *Engine) BeginLoad(ctx context.Context, src source.Reader) (*Draft, error) {
	c := canonical.New(e.aliases, e.logger)

	var accepted []models.StopRecord
	var report models.LoadReport

	err := src.ReadStops(ctx, func(raw models.RawStopRecord) error {
		report.RecordsIn++
		rec, reason := c.Canonicalize(raw)
		if reason != "" {
			report.RejectedRows = append(report.RejectedRows, models.RejectedRow{
				Record: raw,
				Reason: reason,
			})
			return nil
		}
		accepted = append(accepted, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}

	st, res, err := store.BulkLoad(accepted)
	report.Accepted = len(accepted)
	report.DuplicatesRemoved = res.DuplicatesRemoved
	report.TrainsPurged = res.TrainsPurged
	report.TrainsRetained = res.TrainsRetained
	if err != nil {
		return nil, fmt.Errorf("loading %d records: %w", report.RecordsIn, err)
	}

	e.logger.Info("Draft store loaded",
		"records_in", report.RecordsIn,
		"accepted", report.Accepted,
		"duplicates_removed", report.DuplicatesRemoved,
		"trains_purged", report.TrainsPurged,
		"trains_retained", report.TrainsRetained,
		"rejected_rows", len(report.RejectedRows))

	return &Draft{engine: e, store: st, report: report}, nil
}

// SetSourceModified records the source's modification time on the draft
// for change detection on the next rebuild.
func (d *Draft) SetSourceModified(t time.Time) {
	d.sourceModified = t
}

// AnnotateDuration enriches the draft's routes with run times. Part of
// the write phase; must be called before Publish.
func (d *Draft) AnnotateDuration(train, fromStation, toStation string, runTime time.Duration) error {
	return d.store.AnnotateDuration(train, fromStation, toStation, runTime)
}

// Report returns the draft's load counters.
func (d *Draft) Report() models.LoadReport {
	return d.report
}

// Publish builds the derived structures and atomically swaps the
// published snapshot reference.
func (d *Draft) Publish() *Snapshot {
	snap := &Snapshot{
		ID:             uuid.New().String(),
		BuiltAt:        time.Now().UTC(),
		SourceModified: d.sourceModified,
		Store:          d.store,
		Index:          index.Build(d.store),
		Summary:        summary.Build(d.store, d.engine.aliases),
		Report:         d.report,
	}
	d.engine.current.Store(snap)

	d.engine.logger.Info("Snapshot published",
		"snapshot_id", snap.ID,
		"trains", snap.Report.TrainsRetained,
		"stations", snap.Index.Stations())

	return snap
}

// LoadRoutes is the one-shot load: BeginLoad then Publish, no enrichment.
func (e *Engine) LoadRoutes(ctx context.Context, src source.Reader) (models.LoadReport, error) {
	draft, err := e.BeginLoad(ctx, src)
	if err != nil {
		return models.LoadReport{}, err
	}
	return draft.Publish().Report, nil
}

// QueryDirect answers a city-pair query against the current snapshot.
func (e *Engine) QueryDirect(originCityText, destinationCityText string) (models.QueryResult, error) {
	snap := e.current.Load()
	if snap == nil {
		return models.QueryResult{}, ErrNoSnapshot
	}
	q := query.New(e.aliases, snap.Index, e.logger)
	return q.Direct(originCityText, destinationCityText), nil
}

// SummaryFor resolves a city name and returns its origin/terminal train
// sets from the current snapshot.
func (e *Engine) SummaryFor(cityText string) (models.CitySummary, error) {
	snap := e.current.Load()
	if snap == nil {
		return models.CitySummary{}, ErrNoSnapshot
	}
	city, ok := e.aliases.Resolve(cityText)
	if !ok {
		return models.CitySummary{}, alias.ErrCityNotFound
	}
	return snap.Summary.For(city), nil
}

// Snapshot returns the currently published snapshot, nil before the
// first publish.
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}
