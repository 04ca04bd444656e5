package catalog

import (
	"errors"
	"fmt"
)

// Field identifies a value the extractor looks up in an item fragment
type Field string

const (
	FieldName        Field = "name"
	FieldReference   Field = "reference"
	FieldPrice       Field = "price"
	FieldImage       Field = "image"
	FieldDescription Field = "description"
	FieldCategory    Field = "category"
	FieldKind        Field = "kind"
	FieldActive      Field = "active"
	FieldSellable    Field = "sellable"
	FieldPurchasable Field = "purchasable"
	FieldPublished   Field = "published"
)

// allFields lists every field in a fixed order
var allFields = []Field{
	FieldName, FieldReference, FieldPrice, FieldImage, FieldDescription, FieldCategory,
	FieldKind, FieldActive, FieldSellable, FieldPurchasable, FieldPublished,
}

// Mandatory reports whether a miss on this field discards the item
func (f Field) Mandatory() bool {
	return f == FieldName || f == FieldPrice
}

// Status is the outcome of looking up one field
type Status int

const (
	// StatusMissing means no strategy located the field; use the default
	StatusMissing Status = iota
	// StatusFound means a strategy located a non-empty value
	StatusFound
	// StatusMalformed means the value was located but could not be typed
	StatusMalformed
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusMalformed:
		return "malformed"
	default:
		return "missing"
	}
}

// Result is the raw value found for a field together with how it was found
type Result struct {
	Value    string
	Status   Status
	Strategy string
}

// Found reports whether the field was located
func (r Result) Found() bool {
	return r.Status == StatusFound
}

// Extraction holds every field result for one item fragment
type Extraction struct {
	Fields     map[Field]Result
	Breadcrumb []string
}

// Get returns the result for f; absent fields read as missing
func (e Extraction) Get(f Field) Result {
	if e.Fields == nil {
		return Result{}
	}
	return e.Fields[f]
}

// MissingMandatory lists the mandatory fields that were not located
func (e Extraction) MissingMandatory() []Field {
	var missing []Field
	for _, f := range allFields {
		if f.Mandatory() && !e.Get(f).Found() {
			missing = append(missing, f)
		}
	}
	return missing
}

// Kind is the product type of the import schema
type Kind string

const (
	KindProduct    Kind = "product"
	KindConsumable Kind = "consu"
	KindService    Kind = "service"
)

// ParseKind maps a raw type label onto a Kind
func ParseKind(raw string) (Kind, bool) {
	switch Kind(raw) {
	case KindProduct, KindConsumable, KindService:
		return Kind(raw), true
	}
	switch raw {
	case "storable", "stockable", "goods":
		return KindProduct, true
	case "consumable":
		return KindConsumable, true
	}
	return "", false
}

// Flags are the publication switches of a product
type Flags struct {
	Active      bool
	Sellable    bool
	Purchasable bool
	Published   bool
}

// ProductRecord is one assembled catalog product
type ProductRecord struct {
	Name         string
	Identifier   string
	Price        float64
	Kind         Kind
	Category     string
	Description  string
	Flags        Flags
	Image        string
	CategoryPath []string
}

// Row returns the record keyed by schema column names, in its own shape.
// Values are not yet coerced; that is the normalizer's job.
func (p ProductRecord) Row() map[string]any {
	path := make([]string, len(p.CategoryPath))
	copy(path, p.CategoryPath)
	return map[string]any{
		ColName:           p.Name,
		ColDefaultCode:    p.Identifier,
		ColListPrice:      p.Price,
		ColType:           string(p.Kind),
		ColCategory:       p.Category,
		ColDescription:    p.Description,
		ColActive:         p.Flags.Active,
		ColSaleOK:         p.Flags.Sellable,
		ColPurchaseOK:     p.Flags.Purchasable,
		ColImage:          p.Image,
		ColPublished:      p.Flags.Published,
		ColPublicCategory: path,
	}
}

// FlagPolicy decides where the boolean flags of a record come from
type FlagPolicy string

const (
	// FlagsExtracted reads flags from the fragment and falls back to the schema default
	FlagsExtracted FlagPolicy = "extracted"
	// FlagsForceTrue sets every flag to true regardless of the fragment
	FlagsForceTrue FlagPolicy = "force_true"
)

// ParseFlagPolicy validates a configured policy name
func ParseFlagPolicy(s string) (FlagPolicy, error) {
	switch FlagPolicy(s) {
	case FlagsExtracted, FlagsForceTrue:
		return FlagPolicy(s), nil
	case "":
		return FlagsExtracted, nil
	}
	return "", fmt.Errorf("unknown flag policy %q", s)
}

// ErrDiscarded marks an item that cannot become a ProductRecord
var ErrDiscarded = errors.New("item discarded")

// DiscardError explains why an item fragment produced no record. Result
// is the offending field: StatusMissing when no strategy located it,
// StatusMalformed when its value could not be typed.
type DiscardError struct {
	Field  Field
	Result Result
	Err    error
}

func (e *DiscardError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("discard: %s %s: %v", e.Field, e.Result.Status, e.Err)
	}
	return fmt.Sprintf("discard: %s %s", e.Field, e.Result.Status)
}

// Malformed reports whether the field was located but unreadable
func (e *DiscardError) Malformed() bool {
	return e.Result.Status == StatusMalformed
}

// Is makes every DiscardError match ErrDiscarded
func (e *DiscardError) Is(target error) bool {
	return target == ErrDiscarded
}

func (e *DiscardError) Unwrap() error {
	return e.Err
}
