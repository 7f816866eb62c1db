package rebuild

import (
	"context"
	"time"
)

type SourceProber interface {
	LastModified(ctx context.Context, url string) (time.Time, error)
}

type Downloader interface {
	Download(ctx context.Context, url string, destPath string) error
}

type Scheduler interface {
	Start(ctx context.Context) error
	Stop() error
}
