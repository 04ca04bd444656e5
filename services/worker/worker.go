package worker

import (
	"context"
	"errors"
	"time"

	"sjsage522/catalogworker/internal/catalog"
	"sjsage522/catalogworker/internal/crawler"
	"sjsage522/catalogworker/logger"
	apperrors "sjsage522/catalogworker/pkg/errors"
	"sjsage522/catalogworker/services/export"

	"github.com/google/uuid"
)

// Options controls filtering, projection and scheduling of runs
type Options struct {
	MinPrice      float64
	MaxPrice      float64
	ExportFields  []string
	CrawlInterval time.Duration
	Currency      string

	// Retries is how many more times a query is tried after a retryable
	// failure, waiting RetryDelay in between
	Retries    int
	RetryDelay time.Duration
}

// QueryResult summarizes the pipeline run for one search query
type QueryResult struct {
	Query     string
	Fragments int
	Emitted   int
	Discarded int
	Malformed int
	Filtered  int
	Exported  int
}

// Worker runs the catalog pipeline for each query, one listing at a time
type Worker struct {
	ctx        context.Context
	crawler    crawler.Crawler
	normalizer *catalog.Normalizer
	exporters  []export.Exporter
	queries    []string
	opts       Options
	log        *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	c crawler.Crawler,
	normalizer *catalog.Normalizer,
	exporters []export.Exporter,
	queries []string,
	opts Options,
) *Worker {
	return &Worker{
		ctx:        ctx,
		crawler:    c,
		normalizer: normalizer,
		exporters:  exporters,
		queries:    queries,
		opts:       opts,
		log:        logger.ForWorker(),
	}
}

// Start runs all queries, then repeats every CrawlInterval until the
// context is canceled. With no interval it runs once.
func (w *Worker) Start() error {
	for {
		start := time.Now()
		_, err := w.RunOnce()
		w.log.Info().Dur("elapsed", time.Since(start)).Msg("Catalog run finished")

		if w.opts.CrawlInterval <= 0 {
			return err
		}
		if err != nil {
			w.log.Error().Err(err).Msg("Catalog run had failures")
		}

		select {
		case <-w.ctx.Done():
			return nil
		case <-time.After(w.opts.CrawlInterval):
		}
	}
}

// RunOnce processes every query in order. A failing query is logged and
// reported but does not stop the others.
func (w *Worker) RunOnce() ([]QueryResult, error) {
	runID := uuid.NewString()
	log := w.log.WithFields(logger.Fields{
		"run_id":  runID,
		"queries": len(w.queries),
	})

	var results []QueryResult
	var errs []error
	for _, query := range w.queries {
		if err := w.ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		result, err := w.processWithRetry(log, runID, query)
		if err != nil {
			log.WithError(err).Error().Str("query", query).Msg("Query failed")
			errs = append(errs, err)
			continue
		}
		results = append(results, result)

		log.Info().
			Str("query", result.Query).
			Int("found", result.Fragments).
			Int("emitted", result.Emitted).
			Int("discarded", result.Discarded).
			Int("malformed", result.Malformed).
			Int("filtered", result.Filtered).
			Int("exported", result.Exported).
			Msg("Query processed")
	}

	return results, errors.Join(errs...)
}

// processWithRetry runs ProcessQuery again while the failure is retryable
// and retries remain
func (w *Worker) processWithRetry(log *logger.Logger, runID, query string) (QueryResult, error) {
	for attempt := 1; ; attempt++ {
		result, err := w.ProcessQuery(runID, query)
		if err == nil || attempt > w.opts.Retries || !retryable(err) {
			return result, err
		}

		log.WithError(err).Warn().
			Str("query", query).
			Int("attempt", attempt).
			Dur("delay", w.opts.RetryDelay).
			Msg("Retrying query")

		select {
		case <-w.ctx.Done():
			return result, err
		case <-time.After(w.opts.RetryDelay):
		}
	}
}

func retryable(err error) bool {
	var pe *apperrors.PipelineError
	return errors.As(err, &pe) && pe.IsRetryable()
}

// ProcessQuery crawls, filters, normalizes and exports one query
func (w *Worker) ProcessQuery(runID, query string) (QueryResult, error) {
	result := QueryResult{Query: query}

	records, stats, err := w.crawler.Crawl(w.ctx, query)
	if err != nil {
		return result, err
	}
	result.Fragments = stats.Fragments
	result.Emitted = stats.Emitted
	result.Discarded = stats.Discarded
	result.Malformed = stats.Malformed

	kept := catalog.FilterByPrice(records, w.opts.MinPrice, w.opts.MaxPrice)
	result.Filtered = len(records) - len(kept)
	if len(kept) == 0 {
		return result, nil
	}
	w.preview(query, kept[0])

	ds, err := w.normalizer.NormalizeRecords(kept).Select(w.opts.ExportFields...)
	if err != nil {
		return result, err
	}

	for _, exp := range w.exporters {
		if err := exp.Export(w.ctx, export.Batch{RunID: runID, Query: query, Dataset: ds}); err != nil {
			return result, err
		}
	}
	result.Exported = ds.Len()

	return result, nil
}

// preview logs the first record of a query at debug level
func (w *Worker) preview(query string, r catalog.ProductRecord) {
	w.log.Debug().
		Str("query", query).
		Str("name", r.Name).
		Str("code", r.Identifier).
		Str("price", catalog.FormatPrice(r.Price, w.opts.Currency)).
		Strs("category_path", r.CategoryPath).
		Msg("First product")
}
