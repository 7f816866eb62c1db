// Package rebuild runs the periodic snapshot rebuild: probe the source
// for changes, download if remote, load a draft, publish, persist. A
// failed rebuild is abandoned and the previous snapshot stays live.
package rebuild

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/CO2mega/12306router/internal/common/logger"
	"github.com/CO2mega/12306router/internal/common/notify"
	"github.com/CO2mega/12306router/internal/traindata/engine"
	"github.com/CO2mega/12306router/internal/traindata/persist"
	"github.com/CO2mega/12306router/internal/traindata/source"
)

const (
	FormatSQLite = "sqlite"
	FormatCSV    = "csv"
)

type Config struct {
	SourceURL     string // remote extract; probed and downloaded when set
	SourcePath    string // local extract; used when SourceURL is empty
	SourceFormat  string // FormatSQLite or FormatCSV
	SourceName    string
	CheckInterval time.Duration
	DownloadDir   string
	RetentionAge  time.Duration
}

type RouteScheduler struct {
	config     Config
	engine     *engine.Engine
	writer     *persist.Writer // nil disables persistence
	prober     SourceProber
	downloader Downloader
	notifier   *notify.Client
	logger     logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
}

func NewScheduler(
	config Config,
	eng *engine.Engine,
	writer *persist.Writer,
	notifier *notify.Client,
	logger logger.Logger,
) *RouteScheduler {
	return &RouteScheduler{
		config:     config,
		engine:     eng,
		writer:     writer,
		prober:     NewHTTPProber(logger),
		downloader: NewHTTPDownloader(logger),
		notifier:   notifier,
		logger:     logger,
	}
}

func (s *RouteScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.mu.Unlock()

	s.logger.Info("Starting route scheduler",
		"source", s.config.SourceName,
		"format", s.config.SourceFormat,
		"check_interval", s.config.CheckInterval)

	// Initial rebuild
	if err := s.checkAndRebuild(ctx); err != nil {
		s.logger.Error("Initial rebuild failed", "error", err)
	}

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return nil
		case <-ticker.C:
			if err := s.checkAndRebuild(ctx); err != nil {
				s.logger.Error("Scheduled rebuild failed", "error", err)
			}
		}
	}
}

func (s *RouteScheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return fmt.Errorf("scheduler not running")
	}

	if s.cancel != nil {
		s.cancel()
	}

	s.running = false
	return nil
}

func (s *RouteScheduler) checkAndRebuild(ctx context.Context) error {
	modified, err := s.sourceModified(ctx)
	if err != nil {
		return fmt.Errorf("probing source: %w", err)
	}

	if snap := s.engine.Snapshot(); snap != nil && !modified.IsZero() &&
		!modified.After(snap.SourceModified) {
		s.logger.Debug("Source unchanged, keeping current snapshot",
			"last_modified", modified,
			"snapshot_id", snap.ID)
		return nil
	}

	extractPath := s.config.SourcePath
	if s.config.SourceURL != "" {
		extractPath = filepath.Join(
			s.config.DownloadDir,
			fmt.Sprintf("extract_%s_%s", s.config.SourceName,
				time.Now().Format("20060102_150405")),
		)
		if err := s.downloader.Download(ctx, s.config.SourceURL, extractPath); err != nil {
			return fmt.Errorf("downloading extract: %w", err)
		}
		defer os.Remove(extractPath)
	}

	reader, err := s.openReader(extractPath)
	if err != nil {
		return err
	}

	draft, err := s.engine.BeginLoad(ctx, reader)
	if err != nil {
		if notifyErr := s.notifier.SendRebuildFailure(s.config.SourceName, err); notifyErr != nil {
			s.logger.Warn("Failed to send rebuild alert", "error", notifyErr)
		}
		return fmt.Errorf("loading extract: %w", err)
	}
	draft.SetSourceModified(modified)

	snap := draft.Publish()

	if s.writer != nil {
		if _, err := s.writer.Persist(ctx, snap, s.config.SourceName); err != nil {
			// The snapshot is already live; persistence is best-effort.
			s.logger.Error("Failed to persist snapshot", "snapshot_id", snap.ID, "error", err)
		} else if s.config.RetentionAge > 0 {
			if _, err := s.writer.Prune(ctx, s.config.RetentionAge); err != nil {
				s.logger.Warn("Failed to prune old versions", "error", err)
			}
		}
	}

	if err := s.notifier.SendRebuildSuccess(s.config.SourceName, snap.ID,
		snap.Report.TrainsRetained); err != nil {
		s.logger.Warn("Failed to send rebuild alert", "error", err)
	}

	return nil
}

func (s *RouteScheduler) sourceModified(ctx context.Context) (time.Time, error) {
	if s.config.SourceURL != "" {
		return s.prober.LastModified(ctx, s.config.SourceURL)
	}
	info, err := os.Stat(s.config.SourcePath)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %s: %w", s.config.SourcePath, err)
	}
	return info.ModTime(), nil
}

func (s *RouteScheduler) openReader(path string) (source.Reader, error) {
	switch s.config.SourceFormat {
	case FormatSQLite:
		return source.NewSQLiteReader(path, s.logger), nil
	case FormatCSV:
		return source.NewCSVReader(path, s.logger), nil
	default:
		return nil, fmt.Errorf("unknown source format %q", s.config.SourceFormat)
	}
}
