package export

import (
	"context"
	"strconv"

	"sjsage522/catalogworker/internal/catalog"
)

// Batch is the canonical dataset produced for one search query
type Batch struct {
	RunID   string
	Query   string
	Dataset *catalog.Dataset
}

// Exporter hands a batch to a downstream consumer without altering values
type Exporter interface {
	Export(ctx context.Context, batch Batch) error
	Close() error
}

// FormatCell renders one dataset value as text
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	default:
		return ""
	}
}
