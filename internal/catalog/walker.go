package catalog

import (
	"errors"
	"fmt"
	"io"

	"sjsage522/catalogworker/logger"
	apperrors "sjsage522/catalogworker/pkg/errors"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

// WalkStats summarizes one listing walk
type WalkStats struct {
	ItemSelector string
	Fragments    int
	Emitted      int
	Discarded    int
	Malformed    int
	Faults       int
}

// Walker enumerates the item fragments of a listing document and
// assembles one record per fragment, in document order
type Walker struct {
	itemSelectors []string
	extractor     *Extractor
	assembler     *Assembler
	workers       int
	log           *logger.Logger
}

// WalkerOption configures a Walker
type WalkerOption func(*Walker)

// WithItemSelectors replaces the item fragment lookup chain
func WithItemSelectors(selectors ...string) WalkerOption {
	return func(w *Walker) { w.itemSelectors = selectors }
}

// WithExtractor sets the field extractor
func WithExtractor(e *Extractor) WalkerOption {
	return func(w *Walker) { w.extractor = e }
}

// WithAssembler sets the record assembler
func WithAssembler(a *Assembler) WalkerOption {
	return func(w *Walker) { w.assembler = a }
}

// WithWorkers extracts up to n fragments at once. Output order is unchanged.
func WithWorkers(n int) WalkerOption {
	return func(w *Walker) { w.workers = n }
}

// WithLogger sets the walker's logger
func WithLogger(l *logger.Logger) WalkerOption {
	return func(w *Walker) { w.log = l }
}

// NewWalker creates a walker with the default selectors, extractor and
// an assembler for OdooProductSchema
func NewWalker(opts ...WalkerOption) *Walker {
	w := &Walker{
		itemSelectors: DefaultItemSelectors,
		workers:       1,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.extractor == nil {
		w.extractor = NewExtractor()
	}
	if w.assembler == nil {
		w.assembler = NewAssembler(OdooProductSchema, FlagsExtracted)
	}
	if w.log == nil {
		w.log = logger.ForComponent("walker")
	}
	return w
}

// WalkReader parses a listing document and walks it. A document that
// cannot be parsed is a run failure.
func (w *Walker) WalkReader(r io.Reader) ([]ProductRecord, WalkStats, error) {
	if r == nil {
		return nil, WalkStats{}, apperrors.NewParsing("walker", "no listing document", nil)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, WalkStats{}, apperrors.NewParsing("walker", "parse listing document", err)
	}
	records, stats := w.Walk(doc)
	return records, stats, nil
}

// Fragments returns the item fragments of doc and the selector that found them
func (w *Walker) Fragments(doc *goquery.Document) (*goquery.Selection, string) {
	for _, selector := range w.itemSelectors {
		if items := doc.Find(selector); items.Length() > 0 {
			return items, selector
		}
	}
	return doc.Selection.Slice(0, 0), ""
}

type outcome struct {
	record    *ProductRecord
	malformed bool
	fault     bool
}

// Walk assembles every fragment of doc. Discarded and faulting fragments
// are skipped; a document without fragments yields an empty slice.
func (w *Walker) Walk(doc *goquery.Document) ([]ProductRecord, WalkStats) {
	records := []ProductRecord{}
	if doc == nil {
		return records, WalkStats{}
	}

	items, selector := w.Fragments(doc)
	stats := WalkStats{ItemSelector: selector, Fragments: items.Length()}
	if stats.Fragments == 0 {
		return records, stats
	}

	outcomes := make([]outcome, stats.Fragments)
	if w.workers <= 1 {
		items.Each(func(i int, s *goquery.Selection) {
			outcomes[i] = w.process(i, s)
		})
	} else {
		var g errgroup.Group
		g.SetLimit(w.workers)
		items.Each(func(i int, s *goquery.Selection) {
			g.Go(func() error {
				outcomes[i] = w.process(i, s)
				return nil
			})
		})
		_ = g.Wait()
	}

	for _, o := range outcomes {
		switch {
		case o.record != nil:
			records = append(records, *o.record)
		case o.fault:
			stats.Faults++
			stats.Discarded++
		case o.malformed:
			stats.Malformed++
			stats.Discarded++
		default:
			stats.Discarded++
		}
	}
	stats.Emitted = len(records)

	w.log.Debug().
		Str("selector", stats.ItemSelector).
		Int("fragments", stats.Fragments).
		Int("emitted", stats.Emitted).
		Int("discarded", stats.Discarded).
		Int("malformed", stats.Malformed).
		Int("faults", stats.Faults).
		Msg("Listing walked")

	return records, stats
}

// process handles one fragment; a panic is contained to that fragment
func (w *Walker) process(index int, item *goquery.Selection) (o outcome) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Warn().
				Int("fragment", index).
				Str("panic", fmt.Sprint(r)).
				Msg("Fragment processing fault, item discarded")
			o = outcome{fault: true}
		}
	}()

	record, err := w.assembler.Assemble(w.extractor.Extract(item))
	if err != nil {
		var de *DiscardError
		if !errors.As(err, &de) {
			w.log.Warn().Err(err).Int("fragment", index).Msg("Unexpected assembly error")
			return outcome{fault: true}
		}
		w.log.Debug().
			Err(err).
			Int("fragment", index).
			Str("field", string(de.Field)).
			Str("strategy", de.Result.Strategy).
			Msg("Item discarded")
		return outcome{malformed: de.Malformed()}
	}
	return outcome{record: &record}
}
