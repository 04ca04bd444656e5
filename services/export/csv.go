package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	apperrors "sjsage522/catalogworker/pkg/errors"
)

// CSVExporter appends every batch to one CSV file.
// It is safe for concurrent use.
type CSVExporter struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	writer  *csv.Writer
	columns []string
}

// NewCSVExporter creates (or truncates) the CSV file at path.
// Intermediate directories are created automatically.
func NewCSVExporter(path string) (*CSVExporter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.NewExport("csv", "create output dir", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, apperrors.NewExport("csv", fmt.Sprintf("create file %q", path), err)
	}

	return &CSVExporter{path: path, file: f, writer: csv.NewWriter(f)}, nil
}

// Export writes the header on first use, then one line per row
func (c *CSVExporter) Export(ctx context.Context, batch Batch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if batch.Dataset == nil {
		return nil
	}

	if c.columns == nil {
		c.columns = slices.Clone(batch.Dataset.Columns)
		if err := c.writer.Write(c.columns); err != nil {
			return apperrors.NewExport("csv", "write header", err)
		}
	} else if !slices.Equal(c.columns, batch.Dataset.Columns) {
		return apperrors.NewExport("csv", "column set changed between batches", nil)
	}

	line := make([]string, len(c.columns))
	for _, row := range batch.Dataset.Rows {
		for j, v := range row {
			line[j] = FormatCell(v)
		}
		if err := c.writer.Write(line); err != nil {
			return apperrors.NewExport("csv", "write row", err)
		}
	}

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return apperrors.NewExport("csv", "flush", err)
	}
	return nil
}

// Close flushes and closes the underlying file
func (c *CSVExporter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	return c.file.Close()
}
