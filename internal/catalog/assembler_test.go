package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func found(v string) Result {
	return Result{Value: v, Status: StatusFound, Strategy: "test"}
}

func TestAssembleAppliesDefaults(t *testing.T) {
	ext := Extraction{Fields: map[Field]Result{
		FieldName:  found("Riz 5kg"),
		FieldPrice: found("5 000 FCFA"),
	}}

	record, err := NewAssembler(OdooProductSchema, FlagsExtracted).Assemble(ext)
	require.NoError(t, err)

	assert.Equal(t, ProductRecord{
		Name:         "Riz 5kg",
		Identifier:   "",
		Price:        5000.0,
		Kind:         KindProduct,
		Category:     "Uncategorized",
		Description:  "",
		Flags:        Flags{Active: true, Sellable: true, Purchasable: true, Published: true},
		Image:        "",
		CategoryPath: []string{},
	}, record)
}

func TestAssembleDiscards(t *testing.T) {
	testCases := []struct {
		name   string
		fields map[Field]Result
		field  Field
		status Status
		cause  error
	}{
		{
			name:   "missing name",
			fields: map[Field]Result{FieldPrice: found("5 000 FCFA")},
			field:  FieldName,
			status: StatusMissing,
		},
		{
			name:   "missing name and price",
			fields: map[Field]Result{},
			field:  FieldName,
			status: StatusMissing,
		},
		{
			name:   "missing price",
			fields: map[Field]Result{FieldName: found("Riz 5kg")},
			field:  FieldPrice,
			status: StatusMissing,
		},
		{
			name:   "price without digits",
			fields: map[Field]Result{FieldName: found("Riz 5kg"), FieldPrice: found("Prix sur demande")},
			field:  FieldPrice,
			status: StatusMalformed,
			cause:  ErrPriceEmpty,
		},
		{
			name:   "garbled price",
			fields: map[Field]Result{FieldName: found("Riz 5kg"), FieldPrice: found("1.2.3,4,5")},
			field:  FieldPrice,
			status: StatusMalformed,
			cause:  ErrPriceInvalid,
		},
	}

	a := NewAssembler(OdooProductSchema, FlagsExtracted)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := a.Assemble(Extraction{Fields: tc.fields})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDiscarded))

			var de *DiscardError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tc.field, de.Field)
			assert.Equal(t, tc.status, de.Result.Status)
			assert.Equal(t, tc.status == StatusMalformed, de.Malformed())
			if tc.cause != nil {
				assert.True(t, errors.Is(err, tc.cause))
			}
		})
	}
}

func TestAssembleMalformedPriceKeepsRawValue(t *testing.T) {
	ext := Extraction{Fields: map[Field]Result{
		FieldName:  found("Livraison express"),
		FieldPrice: found("Prix sur demande"),
	}}

	_, err := NewAssembler(OdooProductSchema, FlagsExtracted).Assemble(ext)

	var de *DiscardError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, Result{Value: "Prix sur demande", Status: StatusMalformed, Strategy: "test"}, de.Result)
	assert.Equal(t, StatusFound, ext.Get(FieldPrice).Status)
	assert.Contains(t, err.Error(), "price malformed")
}

func TestAssembleFullRecord(t *testing.T) {
	ext := Extraction{
		Fields: map[Field]Result{
			FieldName:        found("Huile d'arachide 1L"),
			FieldPrice:       found("1 450,50 FCFA"),
			FieldReference:   found("/huile-arachide-1l.html?search=riz"),
			FieldImage:       found("https://cdn.example/huile.jpg"),
			FieldDescription: found("Bouteille 1L"),
			FieldCategory:    found("Huiles"),
			FieldKind:        found("Consumable"),
			FieldSellable:    found("Rupture de stock"),
			FieldPublished:   found("0"),
			FieldActive:      found("peut-être"),
		},
		Breadcrumb: []string{"Epicerie", "Huiles"},
	}

	record, err := NewAssembler(OdooProductSchema, FlagsExtracted).Assemble(ext)
	require.NoError(t, err)

	assert.Equal(t, "huile-arachide-1l.html", record.Identifier)
	assert.Equal(t, 1450.5, record.Price)
	assert.Equal(t, KindConsumable, record.Kind)
	assert.Equal(t, "Huiles", record.Category)
	assert.Equal(t, "Bouteille 1L", record.Description)
	assert.Equal(t, "https://cdn.example/huile.jpg", record.Image)
	assert.Equal(t, Flags{Active: true, Sellable: false, Purchasable: true, Published: false}, record.Flags)
	assert.Equal(t, []string{"Epicerie", "Huiles"}, record.CategoryPath)

	// The record does not share the extraction's slice
	ext.Breadcrumb[0] = "changed"
	assert.Equal(t, "Epicerie", record.CategoryPath[0])
}

func TestAssembleForceTrueFlags(t *testing.T) {
	ext := Extraction{Fields: map[Field]Result{
		FieldName:      found("Huile 1L"),
		FieldPrice:     found("1 450 FCFA"),
		FieldSellable:  found("false"),
		FieldPublished: found("0"),
	}}

	record, err := NewAssembler(OdooProductSchema, FlagsForceTrue).Assemble(ext)
	require.NoError(t, err)
	assert.Equal(t, Flags{Active: true, Sellable: true, Purchasable: true, Published: true}, record.Flags)
}

func TestAssembleUnknownKind(t *testing.T) {
	ext := Extraction{Fields: map[Field]Result{
		FieldName:  found("Carte cadeau"),
		FieldPrice: found("10 000"),
		FieldKind:  found("bundle"),
	}}

	record, err := NewAssembler(OdooProductSchema, "").Assemble(ext)
	require.NoError(t, err)
	assert.Equal(t, KindProduct, record.Kind)
}

func TestParseFlagPolicy(t *testing.T) {
	p, err := ParseFlagPolicy("")
	assert.NoError(t, err)
	assert.Equal(t, FlagsExtracted, p)

	p, err = ParseFlagPolicy("force_true")
	assert.NoError(t, err)
	assert.Equal(t, FlagsForceTrue, p)

	_, err = ParseFlagPolicy("always")
	assert.Error(t, err)
}
