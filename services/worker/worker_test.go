package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sjsage522/catalogworker/internal/catalog"
	"sjsage522/catalogworker/internal/crawler"
	apperrors "sjsage522/catalogworker/pkg/errors"
	"sjsage522/catalogworker/services/export"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockCrawler implements the crawler.Crawler interface for testing
type MockCrawler struct {
	mu       sync.Mutex
	records  map[string][]catalog.ProductRecord
	errs     map[string]error
	failures map[string][]error
	requests []string
}

// Ensure MockCrawler implements crawler.Crawler
var _ crawler.Crawler = (*MockCrawler)(nil)

func (m *MockCrawler) Crawl(ctx context.Context, query string) ([]catalog.ProductRecord, catalog.WalkStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, query)

	if queued := m.failures[query]; len(queued) > 0 {
		m.failures[query] = queued[1:]
		return nil, catalog.WalkStats{}, queued[0]
	}
	if err := m.errs[query]; err != nil {
		return nil, catalog.WalkStats{}, err
	}
	records := m.records[query]
	return records, catalog.WalkStats{Fragments: len(records) + 1, Emitted: len(records), Discarded: 1}, nil
}

func (m *MockCrawler) GetProvider() string {
	return "Test"
}

// MockExporter records exported batches
type MockExporter struct {
	mu      sync.Mutex
	batches []export.Batch
}

var _ export.Exporter = (*MockExporter)(nil)

func (m *MockExporter) Export(ctx context.Context, batch export.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, batch)
	return nil
}

func (m *MockExporter) Close() error {
	return nil
}

func product(name string, price float64) catalog.ProductRecord {
	return catalog.ProductRecord{
		Name:         name,
		Identifier:   name + ".html",
		Price:        price,
		Kind:         catalog.KindProduct,
		Category:     catalog.UncategorizedLabel,
		Flags:        catalog.Flags{Active: true, Sellable: true, Purchasable: true, Published: true},
		CategoryPath: []string{},
	}
}

func newTestWorker(ctx context.Context, c crawler.Crawler, exp export.Exporter, queries []string, opts Options) *Worker {
	return NewWorker(ctx, c, catalog.NewNormalizer(catalog.OdooProductSchema), []export.Exporter{exp}, queries, opts)
}

func TestRunOnce(t *testing.T) {
	mc := &MockCrawler{
		records: map[string][]catalog.ProductRecord{
			"riz":   {product("riz-5kg", 5000), product("riz-25kg", 21000)},
			"huile": {product("huile-1l", 1500)},
		},
	}
	exp := &MockExporter{}
	w := newTestWorker(context.Background(), mc, exp, []string{"riz", "huile"}, Options{MaxPrice: 10000})

	results, err := w.RunOnce()
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, []string{"riz", "huile"}, mc.requests)
	assert.Equal(t, QueryResult{Query: "riz", Fragments: 3, Emitted: 2, Discarded: 1, Filtered: 1, Exported: 1}, results[0])
	assert.Equal(t, 1, results[1].Exported)

	require.Len(t, exp.batches, 2)
	assert.Equal(t, exp.batches[0].RunID, exp.batches[1].RunID)
	assert.NotEmpty(t, exp.batches[0].RunID)
	name, _ := exp.batches[0].Dataset.Value(0, catalog.ColName)
	assert.Equal(t, "riz-5kg", name)
}

func TestRunOnceContinuesAfterFailure(t *testing.T) {
	mc := &MockCrawler{
		records: map[string][]catalog.ProductRecord{"huile": {product("huile-1l", 1500)}},
		errs:    map[string]error{"riz": errors.New("fetch failed")},
	}
	exp := &MockExporter{}
	w := newTestWorker(context.Background(), mc, exp, []string{"riz", "huile"}, Options{})

	results, err := w.RunOnce()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fetch failed")
	require.Len(t, results, 1)
	assert.Equal(t, "huile", results[0].Query)
	assert.Len(t, exp.batches, 1)
}

func TestRunOnceRetriesNetworkFailures(t *testing.T) {
	mc := &MockCrawler{
		records: map[string][]catalog.ProductRecord{"riz": {product("riz-5kg", 5000)}},
		failures: map[string][]error{
			"riz": {apperrors.NewNetwork("Auchan", "fetch", errors.New("connection reset"))},
		},
	}
	exp := &MockExporter{}
	w := newTestWorker(context.Background(), mc, exp, []string{"riz"}, Options{Retries: 2, RetryDelay: time.Millisecond})

	results, err := w.RunOnce()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Exported)
	assert.Equal(t, []string{"riz", "riz"}, mc.requests)
}

func TestRunOnceGivesUpAfterRetries(t *testing.T) {
	netErr := apperrors.NewNetwork("Auchan", "fetch", errors.New("connection reset"))
	mc := &MockCrawler{
		failures: map[string][]error{"riz": {netErr, netErr, netErr}},
	}
	w := newTestWorker(context.Background(), mc, &MockExporter{}, []string{"riz"}, Options{Retries: 1, RetryDelay: time.Millisecond})

	_, err := w.RunOnce()
	assert.Error(t, err)
	assert.Len(t, mc.requests, 2)
}

func TestRunOnceDoesNotRetryRateLimit(t *testing.T) {
	mc := &MockCrawler{
		errs: map[string]error{"riz": apperrors.NewRateLimit("Auchan", time.Minute)},
	}
	w := newTestWorker(context.Background(), mc, &MockExporter{}, []string{"riz"}, Options{Retries: 3, RetryDelay: time.Millisecond})

	_, err := w.RunOnce()
	assert.Error(t, err)
	assert.Len(t, mc.requests, 1)
}

func TestProcessQuerySelectsExportFields(t *testing.T) {
	mc := &MockCrawler{records: map[string][]catalog.ProductRecord{"riz": {product("riz-5kg", 5000.456)}}}
	exp := &MockExporter{}
	w := newTestWorker(context.Background(), mc, exp, nil, Options{
		ExportFields: []string{catalog.ColName, catalog.ColDefaultCode, catalog.ColListPrice},
	})

	_, err := w.ProcessQuery("run", "riz")
	require.NoError(t, err)
	require.Len(t, exp.batches, 1)

	ds := exp.batches[0].Dataset
	assert.Equal(t, []string{"name", "default_code", "list_price"}, ds.Columns)
	assert.Equal(t, []any{"riz-5kg", "riz-5kg.html", 5000.46}, ds.Rows[0])
}

func TestProcessQueryUnknownExportField(t *testing.T) {
	mc := &MockCrawler{records: map[string][]catalog.ProductRecord{"riz": {product("riz-5kg", 5000)}}}
	w := newTestWorker(context.Background(), mc, &MockExporter{}, nil, Options{ExportFields: []string{"color"}})

	_, err := w.ProcessQuery("run", "riz")
	assert.Error(t, err)
}

func TestProcessQueryNothingLeftAfterFilter(t *testing.T) {
	mc := &MockCrawler{records: map[string][]catalog.ProductRecord{"riz": {product("riz-5kg", 5000)}}}
	exp := &MockExporter{}
	w := newTestWorker(context.Background(), mc, exp, nil, Options{MinPrice: 6000})

	result, err := w.ProcessQuery("run", "riz")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Filtered)
	assert.Empty(t, exp.batches)
}

func TestStartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mc := &MockCrawler{records: map[string][]catalog.ProductRecord{"riz": {product("riz-5kg", 5000)}}}
	w := newTestWorker(ctx, mc, &MockExporter{}, []string{"riz"}, Options{CrawlInterval: 10 * time.Millisecond})

	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	assert.GreaterOrEqual(t, len(mc.requests), 2)
}
