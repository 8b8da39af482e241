package export

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// titlePolicy strips every tag. A Policy is safe for concurrent use once built.
var titlePolicy = bluemonday.StrictPolicy()

// CleanTitle turns a stored title into a single plain-text line: markup is
// removed, entities are decoded and runs of whitespace collapse to one space.
func CleanTitle(title string) string {
	if title == "" {
		return ""
	}
	plain := html.UnescapeString(titlePolicy.Sanitize(title))
	return strings.Join(strings.Fields(plain), " ")
}

// ResolvePermalink returns an absolute link for an item. Relative permalinks
// are resolved against base; an empty permalink falls back to the query-string
// form "{base}/?p={id}". Without a usable base the permalink is returned as is.
func ResolvePermalink(base, permalink, id string) string {
	permalink = strings.TrimSpace(permalink)

	baseURL, err := url.Parse(strings.TrimSpace(base))
	if err != nil || baseURL.Scheme == "" || baseURL.Host == "" {
		return permalink
	}

	if permalink == "" {
		fallback := *baseURL
		if !strings.HasSuffix(fallback.Path, "/") {
			fallback.Path += "/"
		}
		fallback.RawQuery = url.Values{"p": []string{id}}.Encode()
		return fallback.String()
	}

	ref, err := url.Parse(permalink)
	if err != nil || ref.IsAbs() {
		return permalink
	}
	return baseURL.ResolveReference(ref).String()
}
