package catalog

// ColumnType describes how the normalizer coerces a column value
type ColumnType int

const (
	// ColumnString holds free text
	ColumnString ColumnType = iota
	// ColumnPrice holds a non-negative amount rounded to 2 decimals
	ColumnPrice
	// ColumnBool holds a flag exported as 1 or 0
	ColumnBool
	// ColumnList holds an ordered sequence exported as a comma-joined string
	ColumnList
)

// Column names of the product import schema
const (
	ColName           = "name"
	ColDefaultCode    = "default_code"
	ColListPrice      = "list_price"
	ColType           = "type"
	ColCategory       = "categ_id"
	ColDescription    = "description_sale"
	ColActive         = "active"
	ColSaleOK         = "sale_ok"
	ColPurchaseOK     = "purchase_ok"
	ColImage          = "image_1920"
	ColPublished      = "is_published"
	ColPublicCategory = "public_categ_ids"
)

// Column is one entry of the target schema
type Column struct {
	Name    string
	Type    ColumnType
	Default any
}

// Schema is the fixed, ordered column set every exported row carries.
// Record defaults and normalizer coercion both read from it.
type Schema struct {
	Version int
	Columns []Column
}

// UncategorizedLabel is the category used when a fragment carries none
const UncategorizedLabel = "Uncategorized"

// OdooProductSchema is the product.template import layout
var OdooProductSchema = Schema{
	Version: 1,
	Columns: []Column{
		{Name: ColName, Type: ColumnString, Default: ""},
		{Name: ColDefaultCode, Type: ColumnString, Default: ""},
		{Name: ColListPrice, Type: ColumnPrice, Default: 0.0},
		{Name: ColType, Type: ColumnString, Default: string(KindProduct)},
		{Name: ColCategory, Type: ColumnString, Default: UncategorizedLabel},
		{Name: ColDescription, Type: ColumnString, Default: ""},
		{Name: ColActive, Type: ColumnBool, Default: true},
		{Name: ColSaleOK, Type: ColumnBool, Default: true},
		{Name: ColPurchaseOK, Type: ColumnBool, Default: true},
		{Name: ColImage, Type: ColumnString, Default: ""},
		{Name: ColPublished, Type: ColumnBool, Default: true},
		{Name: ColPublicCategory, Type: ColumnList, Default: []string{}},
	},
}

// Names returns the column names in canonical order
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name
func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Has reports whether name is a schema column
func (s Schema) Has(name string) bool {
	_, ok := s.Column(name)
	return ok
}

// DefaultString returns the string default of a column, or "" if it has none
func (s Schema) DefaultString(name string) string {
	if c, ok := s.Column(name); ok {
		if v, ok := c.Default.(string); ok {
			return v
		}
	}
	return ""
}

// DefaultBool returns the flag default of a column
func (s Schema) DefaultBool(name string) bool {
	if c, ok := s.Column(name); ok {
		if v, ok := c.Default.(bool); ok {
			return v
		}
	}
	return false
}
