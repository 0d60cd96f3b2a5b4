// Package enrich adds an image URL to every row of the raw dinosaur table by
// scraping each row's detail page. It is a run-once, best-effort step: a page
// that cannot be fetched or parsed yields an empty image, never an error.
package enrich

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/dinodash/internal/dataset"
	"github.com/JakeFAU/dinodash/internal/metrics"
)

// Outcome labels for a single link.
const (
	OutcomeFound      = "found"
	OutcomeMissing    = "missing"
	OutcomeFetchError = "fetch_error"
	OutcomeBadStatus  = "bad_status"
	OutcomeSkipped    = "skipped"
)

// FetchRequest captures everything needed to fetch a detail page.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Limiter gates requests per host.
type Limiter interface {
	Wait(ctx context.Context, url string) error
}

// Summary counts link outcomes for one run.
type Summary struct {
	Total    int            `json:"total"`
	Outcomes map[string]int `json:"outcomes"`
}

// Enricher resolves image URLs for detail pages, one page at a time.
type Enricher struct {
	fetcher   Fetcher
	extractor *ImageExtractor
	logger    *zap.Logger
	limiter   Limiter
}

// Option customizes an Enricher.
type Option func(*Enricher)

// WithLimiter throttles fetches through l.
func WithLimiter(l Limiter) Option {
	return func(e *Enricher) { e.limiter = l }
}

// New constructs an Enricher.
func New(fetcher Fetcher, extractor *ImageExtractor, logger *zap.Logger, opts ...Option) *Enricher {
	if extractor == nil {
		extractor = NewImageExtractor("", "")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Enricher{fetcher: fetcher, extractor: extractor, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Images returns one image URL per link, "" where none could be resolved.
// Only context cancellation is reported as an error; the remaining entries
// are left empty.
func (e *Enricher) Images(ctx context.Context, links []string) ([]string, Summary, error) {
	images := make([]string, len(links))
	summary := Summary{Total: len(links), Outcomes: map[string]int{}}
	for i, link := range links {
		if err := ctx.Err(); err != nil {
			return images, summary, fmt.Errorf("enrich canceled after %d of %d links: %w", i, len(links), err)
		}
		img, outcome := e.image(ctx, link)
		images[i] = img
		summary.Outcomes[outcome]++
		metrics.ObserveEnrichment(outcome)
	}
	return images, summary, nil
}

func (e *Enricher) image(ctx context.Context, link string) (string, string) {
	if dataset.IsMissing(link) {
		e.logger.Debug("skipping row without link")
		return "", OutcomeSkipped
	}
	resp, err := e.fetch(ctx, link)
	if err != nil {
		e.logger.Warn("detail page fetch failed", zap.String("url", link), zap.Error(err))
		return "", OutcomeFetchError
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.logger.Warn("detail page returned non-2xx",
			zap.String("url", link),
			zap.Int("status", resp.StatusCode),
		)
		return "", OutcomeBadStatus
	}
	pageURL := resp.URL
	if pageURL == "" {
		pageURL = link
	}
	img, err := e.extractor.Extract(pageURL, bytes.NewReader(resp.Body))
	if err != nil {
		level := e.logger.Warn
		if errors.Is(err, ErrImageNotFound) {
			level = e.logger.Info
		}
		level("no image on detail page", zap.String("url", link), zap.Error(err))
		return "", OutcomeMissing
	}
	e.logger.Debug("image resolved", zap.String("url", link), zap.String("image", img))
	return img, OutcomeFound
}

// fetch performs exactly one throttled fetch; a failure is final.
func (e *Enricher) fetch(ctx context.Context, link string) (FetchResponse, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, link); err != nil {
			return FetchResponse{}, err
		}
	}
	return e.fetcher.Fetch(ctx, FetchRequest{URL: link})
}

// EnrichTable returns a copy of raw with the image column set from each row's
// link.
func (e *Enricher) EnrichTable(ctx context.Context, raw *dataset.RawTable) (*dataset.RawTable, Summary, error) {
	links, err := raw.Column(dataset.RawLink)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("enrich table: %w", err)
	}
	images, summary, err := e.Images(ctx, links)
	if err != nil {
		return nil, summary, err
	}
	out, err := raw.WithColumn(dataset.RawImage, images)
	if err != nil {
		return nil, summary, fmt.Errorf("enrich table: %w", err)
	}
	e.logger.Info("enrichment finished",
		zap.Int("rows", summary.Total),
		zap.Int("found", summary.Outcomes[OutcomeFound]),
		zap.Int("missing", summary.Outcomes[OutcomeMissing]),
		zap.Int("fetch_errors", summary.Outcomes[OutcomeFetchError]),
	)
	return out, summary, nil
}
