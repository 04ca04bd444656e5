package catalog

import (
	"github.com/PuerkitoBio/goquery"
)

// Extractor locates raw field values in item fragments using ordered
// fallback chains. Supporting a new markup revision means appending
// strategies, not editing existing ones.
type Extractor struct {
	specs      []FieldSpec
	breadcrumb []string
}

// NewExtractor creates an extractor; with no specs it uses DefaultFieldSpecs
func NewExtractor(specs ...FieldSpec) *Extractor {
	if len(specs) == 0 {
		specs = DefaultFieldSpecs()
	}
	return &Extractor{
		specs:      specs,
		breadcrumb: DefaultBreadcrumbSelectors,
	}
}

// Extract runs every field chain against the fragment. A field no
// strategy can locate is reported as StatusMissing; Extract never fails.
func (e *Extractor) Extract(item *goquery.Selection) Extraction {
	ext := Extraction{
		Fields:     make(map[Field]Result, len(e.specs)),
		Breadcrumb: []string{},
	}
	if item == nil || item.Length() == 0 {
		return ext
	}

	for _, spec := range e.specs {
		ext.Fields[spec.Field] = firstMatch(item, spec.Strategies)
	}
	ext.Breadcrumb = ParseBreadcrumb(e.findBreadcrumb(item))

	return ext
}

func firstMatch(item *goquery.Selection, strategies []Strategy) Result {
	for _, s := range strategies {
		if s == nil {
			continue
		}
		if v, ok := s.Find(item); ok {
			return Result{Value: v, Status: StatusFound, Strategy: s.Name()}
		}
	}
	return Result{Status: StatusMissing}
}

func (e *Extractor) findBreadcrumb(item *goquery.Selection) *goquery.Selection {
	for _, selector := range e.breadcrumb {
		if sel := item.Find(selector); sel.Length() > 0 {
			return sel.First()
		}
	}
	return nil
}
