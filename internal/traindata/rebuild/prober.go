package rebuild

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/CO2mega/12306router/internal/common/logger"
)

const probeTimeout = 30 * time.Second

// HTTPProber checks a remote extract for changes via its Last-Modified
// header. A missing or unparsable header yields the zero time, which the
// scheduler treats as "always rebuild".
type HTTPProber struct {
	client *http.Client
	logger logger.Logger
}

func NewHTTPProber(logger logger.Logger) *HTTPProber {
	return &HTTPProber{
		client: &http.Client{
			Timeout: probeTimeout,
		},
		logger: logger,
	}
}

func (p *HTTPProber) LastModified(ctx context.Context, url string) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("executing request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, fmt.Errorf("source returned status %d", resp.StatusCode)
	}

	header := resp.Header.Get("Last-Modified")
	if header == "" {
		p.logger.Debug("Source has no Last-Modified header", "url", url)
		return time.Time{}, nil
	}

	modified, err := http.ParseTime(header)
	if err != nil {
		p.logger.Warn("Unparsable Last-Modified header", "url", url, "value", header)
		return time.Time{}, nil
	}

	p.logger.Debug("Source probed", "url", url, "last_modified", modified)
	return modified, nil
}
