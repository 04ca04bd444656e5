package catalog

import (
	"strings"

	"sjsage522/catalogworker/helpers"
)

// Assembler turns an Extraction into a ProductRecord, substituting schema
// defaults for optional fields and discarding items whose name or price
// cannot be recovered
type Assembler struct {
	schema Schema
	policy FlagPolicy
}

// NewAssembler creates an assembler reading defaults from schema
func NewAssembler(schema Schema, policy FlagPolicy) *Assembler {
	if policy == "" {
		policy = FlagsExtracted
	}
	return &Assembler{schema: schema, policy: policy}
}

// Assemble builds a record or returns an error matching ErrDiscarded
func (a *Assembler) Assemble(ext Extraction) (ProductRecord, error) {
	if missing := ext.MissingMandatory(); len(missing) > 0 {
		return ProductRecord{}, &DiscardError{Field: missing[0], Result: ext.Get(missing[0])}
	}

	priceResult := ext.Get(FieldPrice)
	price, err := ParsePrice(priceResult.Value)
	if err != nil {
		priceResult.Status = StatusMalformed
		return ProductRecord{}, &DiscardError{Field: FieldPrice, Result: priceResult, Err: err}
	}

	record := ProductRecord{
		Name:         ext.Get(FieldName).Value,
		Identifier:   a.identifier(ext.Get(FieldReference)),
		Price:        price,
		Kind:         a.kind(ext.Get(FieldKind)),
		Category:     a.text(ext.Get(FieldCategory), ColCategory),
		Description:  a.text(ext.Get(FieldDescription), ColDescription),
		Image:        a.text(ext.Get(FieldImage), ColImage),
		Flags:        a.flags(ext),
		CategoryPath: make([]string, len(ext.Breadcrumb)),
	}
	copy(record.CategoryPath, ext.Breadcrumb)

	return record, nil
}

func (a *Assembler) text(r Result, column string) string {
	if r.Found() {
		return r.Value
	}
	return a.schema.DefaultString(column)
}

func (a *Assembler) identifier(r Result) string {
	if !r.Found() {
		return a.schema.DefaultString(ColDefaultCode)
	}
	return helpers.LastPathSegment(r.Value)
}

func (a *Assembler) kind(r Result) Kind {
	if r.Found() {
		if k, ok := ParseKind(strings.ToLower(r.Value)); ok {
			return k
		}
	}
	return Kind(a.schema.DefaultString(ColType))
}

func (a *Assembler) flags(ext Extraction) Flags {
	if a.policy == FlagsForceTrue {
		return Flags{Active: true, Sellable: true, Purchasable: true, Published: true}
	}
	return Flags{
		Active:      a.flag(ext.Get(FieldActive), ColActive),
		Sellable:    a.flag(ext.Get(FieldSellable), ColSaleOK),
		Purchasable: a.flag(ext.Get(FieldPurchasable), ColPurchaseOK),
		Published:   a.flag(ext.Get(FieldPublished), ColPublished),
	}
}

// flag falls back to the column default for missing or unreadable markers
func (a *Assembler) flag(r Result, column string) bool {
	if r.Found() {
		if v, ok := parseFlag(r.Value); ok {
			return v
		}
	}
	return a.schema.DefaultBool(column)
}
