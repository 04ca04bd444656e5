package catalog

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Dataset is the fixed-schema table handed to exporters. Every row holds
// exactly one value per column, in column order.
type Dataset struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Value returns the cell of row i for column
func (d *Dataset) Value(i int, column string) (any, bool) {
	if i < 0 || i >= len(d.Rows) {
		return nil, false
	}
	for j, c := range d.Columns {
		if c == column {
			return d.Rows[i][j], true
		}
	}
	return nil, false
}

// Records returns each row as a column-keyed map
func (d *Dataset) Records() []map[string]any {
	out := make([]map[string]any, len(d.Rows))
	for i, row := range d.Rows {
		m := make(map[string]any, len(d.Columns))
		for j, c := range d.Columns {
			m[c] = row[j]
		}
		out[i] = m
	}
	return out
}

// Select projects the dataset onto a subset of its columns in the given order
func (d *Dataset) Select(columns ...string) (*Dataset, error) {
	if len(columns) == 0 {
		return d, nil
	}
	index := make(map[string]int, len(d.Columns))
	for j, c := range d.Columns {
		index[c] = j
	}
	picks := make([]int, len(columns))
	for k, c := range columns {
		j, ok := index[c]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", c)
		}
		picks[k] = j
	}

	out := &Dataset{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]any, len(d.Rows)),
	}
	for i, row := range d.Rows {
		projected := make([]any, len(picks))
		for k, j := range picks {
			projected[k] = row[j]
		}
		out.Rows[i] = projected
	}
	return out, nil
}

// Normalizer projects records onto a schema. It performs no I/O.
type Normalizer struct {
	schema Schema
}

// NewNormalizer creates a normalizer for schema
func NewNormalizer(schema Schema) *Normalizer {
	return &Normalizer{schema: schema}
}

// NormalizeRecords normalizes assembled product records
func (n *Normalizer) NormalizeRecords(records []ProductRecord) *Dataset {
	rows := make([]map[string]any, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}
	return n.Normalize(rows)
}

// Normalize projects column-keyed records of any origin shape onto the
// schema. Absent columns get the empty value of their type, flags become
// 1 or 0, lists are comma-joined, prices are rounded to 2 decimals and
// never negative, and columns outside the schema are dropped. Output of Normalize fed back
// through Records normalizes to the same dataset.
func (n *Normalizer) Normalize(records []map[string]any) *Dataset {
	ds := &Dataset{
		Columns: n.schema.Names(),
		Rows:    make([][]any, len(records)),
	}
	for i, rec := range records {
		row := make([]any, len(n.schema.Columns))
		for j, col := range n.schema.Columns {
			row[j] = coerce(col.Type, rec[col.Name])
		}
		ds.Rows[i] = row
	}
	return ds
}

func coerce(t ColumnType, v any) any {
	switch t {
	case ColumnPrice:
		return toPrice(v)
	case ColumnBool:
		if toBool(v) {
			return 1
		}
		return 0
	case ColumnList:
		return joinList(v)
	default:
		if v == nil {
			return ""
		}
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
}

// toPrice reads an amount; unreadable, negative and non-finite values are 0
func toPrice(v any) float64 {
	f := toFloat(v)
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return RoundPrice(f)
}

func toFloat(v any) float64 {
	if f, ok := number(v); ok {
		return f
	}
	if x, ok := v.(string); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f
		}
		if f, err := ParsePrice(x); err == nil {
			return f
		}
	}
	return 0
}

func toBool(v any) bool {
	if f, ok := number(v); ok {
		return f != 0
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, _ := parseFlag(x)
		return b
	}
	return false
}

// number reads any integer or float kind, named types included
func number(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func joinList(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(x, ",")
	case []any:
		parts := make([]string, len(x))
		for i, p := range x {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ",")
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
