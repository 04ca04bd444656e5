package catalog

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// breadcrumbSeparators split a breadcrumb rendered as plain text
var breadcrumbSeparators = []string{"/", ">", "»", "›", "|"}

// ParseBreadcrumb turns a breadcrumb element into its category labels.
// The first entry (the home link) is dropped. A nil or empty selection
// yields an empty, non-nil slice.
func ParseBreadcrumb(sel *goquery.Selection) []string {
	if sel == nil || sel.Length() == 0 {
		return []string{}
	}
	return dropHome(breadcrumbLabels(sel.First()))
}

const breadcrumbLinks = "a, span.item, strong"

// breadcrumbLabels reads labels from list items or links, falling back
// to splitting the element text
func breadcrumbLabels(sel *goquery.Selection) []string {
	var labels []string
	add := func(text string) {
		if label := cleanText(text); label != "" {
			labels = append(labels, label)
		}
	}

	if items := sel.Find("li"); items.Length() > 0 {
		items.Each(func(_ int, li *goquery.Selection) {
			add(ownText(li))
		})
		return labels
	}

	if links := sel.Find(breadcrumbLinks); links.Length() > 0 {
		links.Each(func(_ int, n *goquery.Selection) {
			// only the outermost match; a span inside a link is the same label
			if n.ParentsFilteredUntilSelection(breadcrumbLinks, sel).Length() > 0 {
				return
			}
			add(n.Text())
		})
		return labels
	}

	return splitBreadcrumbText(sel.Text())
}

// ownText is the text of a list item without its nested lists
func ownText(li *goquery.Selection) string {
	var b strings.Builder
	li.Contents().Each(func(_ int, c *goquery.Selection) {
		if c.Is("ul, ol") {
			return
		}
		b.WriteString(c.Text())
		b.WriteString(" ")
	})
	return b.String()
}

// splitBreadcrumbText splits "Home / Groceries / Rice" style text
func splitBreadcrumbText(text string) []string {
	for _, sep := range breadcrumbSeparators[1:] {
		text = strings.ReplaceAll(text, sep, breadcrumbSeparators[0])
	}
	var labels []string
	for _, part := range strings.Split(text, breadcrumbSeparators[0]) {
		if label := cleanText(part); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

func dropHome(labels []string) []string {
	if len(labels) <= 1 {
		return []string{}
	}
	out := make([]string, len(labels)-1)
	copy(out, labels[1:])
	return out
}
