package helpers

import (
	"net/url"
	"strings"
)

// LastPathSegment returns the final path element of a link, ignoring the
// query string, fragment and trailing slashes. A link without a path,
// such as a bare host, yields "".
// "https://shop.example/riz-5kg.html?x=1" -> "riz-5kg.html"
func LastPathSegment(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}

	p := strings.TrimRight(u.EscapedPath(), "/")
	if p == "" {
		return ""
	}
	last := p[strings.LastIndex(p, "/")+1:]
	if segment, err := url.PathUnescape(last); err == nil {
		return segment
	}
	return last
}
