package catalog

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy locates the raw value of one field inside an item fragment.
// Strategies only read the fragment.
type Strategy interface {
	// Name identifies the strategy in logs and results
	Name() string

	// Find returns the raw value and whether it was located
	Find(item *goquery.Selection) (string, bool)
}

// CSSText reads the text of the first descendant matching Selector
type CSSText struct {
	Selector string
}

func (s CSSText) Name() string { return "text(" + s.Selector + ")" }

func (s CSSText) Find(item *goquery.Selection) (string, bool) {
	sel := item.Find(s.Selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	text := cleanText(sel.Text())
	return text, text != ""
}

// CSSAttr reads an attribute of the first descendant matching Selector
// that carries a non-empty value for it
type CSSAttr struct {
	Selector string
	Attr     string
}

func (s CSSAttr) Name() string { return fmt.Sprintf("attr(%s@%s)", s.Selector, s.Attr) }

func (s CSSAttr) Find(item *goquery.Selection) (string, bool) {
	var value string
	item.Find(s.Selector).EachWithBreak(func(_ int, n *goquery.Selection) bool {
		if v, ok := n.Attr(s.Attr); ok && strings.TrimSpace(v) != "" {
			value = strings.TrimSpace(v)
			return false
		}
		return true
	})
	return value, value != ""
}

// SelfAttr reads an attribute of the fragment root
type SelfAttr struct {
	Attr string
}

func (s SelfAttr) Name() string { return "self@" + s.Attr }

func (s SelfAttr) Find(item *goquery.Selection) (string, bool) {
	v, ok := item.Attr(s.Attr)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Marker yields Value when the fragment root or a descendant matches Selector
type Marker struct {
	Selector string
	Value    string
}

func (s Marker) Name() string { return "marker(" + s.Selector + ")" }

func (s Marker) Find(item *goquery.Selection) (string, bool) {
	if item.Is(s.Selector) || item.Find(s.Selector).Length() > 0 {
		return s.Value, true
	}
	return "", false
}

// Func adapts a plain function into a Strategy
type Func struct {
	Label string
	Fn    func(*goquery.Selection) (string, bool)
}

func (s Func) Name() string { return s.Label }

func (s Func) Find(item *goquery.Selection) (string, bool) {
	return s.Fn(item)
}

// FieldSpec is the ordered fallback chain for one field
type FieldSpec struct {
	Field      Field
	Strategies []Strategy
}

// Append returns a copy of the spec with more strategies tried last
func (f FieldSpec) Append(strategies ...Strategy) FieldSpec {
	chain := make([]Strategy, 0, len(f.Strategies)+len(strategies))
	chain = append(chain, f.Strategies...)
	chain = append(chain, strategies...)
	return FieldSpec{Field: f.Field, Strategies: chain}
}

// DefaultItemSelectors locate item fragments in a listing document.
// The first selector that matches anything wins.
var DefaultItemSelectors = []string{
	"div.product-item-info",
	"li.product-item",
	"[data-product-id]",
	"[itemtype*='schema.org/Product']",
	"article.product",
}

// DefaultBreadcrumbSelectors locate the breadcrumb inside an item fragment
var DefaultBreadcrumbSelectors = []string{
	"div.breadcrumbs",
	"nav.breadcrumb",
	"ol.breadcrumb",
	"[itemtype*='BreadcrumbList']",
}

const outOfStock = ".stock.unavailable, .out-of-stock, .product-item-unavailable"

// DefaultFieldSpecs returns the selector chains for the current storefront
// markup followed by the older layouts and schema.org microdata
func DefaultFieldSpecs() []FieldSpec {
	return []FieldSpec{
		{Field: FieldName, Strategies: []Strategy{
			CSSText{"a.product-item-link"},
			CSSText{".product-item-name a"},
			CSSText{".product-name"},
			CSSAttr{"[itemprop='name']", "content"},
			CSSText{"[itemprop='name']"},
			CSSText{"h2 a, h3 a"},
		}},
		{Field: FieldReference, Strategies: []Strategy{
			CSSAttr{"a.product-item-link", "href"},
			CSSAttr{".product-item-name a", "href"},
			CSSAttr{"a.product-item-photo", "href"},
			CSSAttr{"[itemprop='url']", "href"},
			CSSAttr{"a", "href"},
		}},
		{Field: FieldPrice, Strategies: []Strategy{
			CSSAttr{"[data-price-type='finalPrice']", "data-price-amount"},
			CSSAttr{"[data-price-amount]", "data-price-amount"},
			CSSText{".special-price span.price"},
			CSSText{"span.price"},
			CSSAttr{"[itemprop='price']", "content"},
			CSSText{".price"},
		}},
		{Field: FieldImage, Strategies: []Strategy{
			CSSAttr{"img.product-image-photo", "src"},
			CSSAttr{"img.product-image-photo", "data-src"},
			CSSAttr{"img[data-src]", "data-src"},
			CSSAttr{"[itemprop='image']", "content"},
			CSSAttr{"img", "src"},
		}},
		{Field: FieldDescription, Strategies: []Strategy{
			CSSText{"div.description"},
			CSSText{".product-item-description"},
			CSSAttr{"[itemprop='description']", "content"},
			CSSText{"[itemprop='description']"},
		}},
		{Field: FieldCategory, Strategies: []Strategy{
			CSSText{"div.category"},
			CSSText{".product-item-category"},
			SelfAttr{"data-category"},
		}},
		{Field: FieldKind, Strategies: []Strategy{
			SelfAttr{"data-product-type"},
			CSSAttr{"[data-product-type]", "data-product-type"},
		}},
		{Field: FieldActive, Strategies: []Strategy{
			SelfAttr{"data-active"},
		}},
		{Field: FieldSellable, Strategies: []Strategy{
			SelfAttr{"data-sale-ok"},
			Marker{outOfStock, "false"},
			CSSText{".stock"},
		}},
		{Field: FieldPurchasable, Strategies: []Strategy{
			SelfAttr{"data-purchase-ok"},
			Marker{outOfStock, "false"},
		}},
		{Field: FieldPublished, Strategies: []Strategy{
			SelfAttr{"data-published"},
		}},
	}
}
