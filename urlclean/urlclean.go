// Package urlclean validates user supplied page URLs and removes tracking
// parameters from their query strings.
package urlclean

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cnosuke/pagemeta/types"
	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// parse applies WHATWG parsing rules, so relative references such as
// "not-a-url" or "://example.com" are rejected instead of accepted as paths.
// Surrounding spaces and embedded tabs or newlines are dropped and stray '%'
// signs are escaped. The result always parses with net/url as well.
func parse(raw string) (*whatwgUrl.Url, error) {
	parsed, err := urlParser.Parse(raw)
	if err != nil {
		return nil, err
	}
	if _, err := url.Parse(parsed.Href(false)); err != nil {
		return nil, err
	}
	return parsed, nil
}

// Normalize checks that raw is an absolute http or https URL and returns its
// WHATWG serialization, which is what gets fetched.
func Normalize(raw string) (string, error) {
	u, err := parse(raw)
	if err != nil {
		return "", types.NewInvalidURLError(raw,
			fmt.Sprintf("Failed to parse URL '%s': %v", raw, err), err)
	}

	switch u.Scheme() {
	case "http", "https":
		return u.Href(false), nil
	default:
		return "", types.NewInvalidURLError(raw,
			fmt.Sprintf("Unsupported scheme '%s'. Only HTTP and HTTPS are supported", u.Scheme()), nil)
	}
}

// Validate checks that raw is an absolute URL with an http or https scheme.
func Validate(raw string) error {
	_, err := Normalize(raw)
	return err
}

// Strip returns raw with every query parameter whose key is in deny removed.
// Remaining parameters keep their order. A URL without a query string is
// returned unchanged; otherwise the result is the WHATWG serialization.
func Strip(raw string, deny Denylist) (string, error) {
	u, err := parse(raw)
	if err != nil {
		return "", types.NewInvalidURLError(raw,
			fmt.Sprintf("Failed to parse URL for cleanup '%s': %v", raw, err), err)
	}

	if !hasQuery(u) {
		return raw, nil
	}

	u.SetSearch(filterQuery(u.Query(), deny))
	return u.Href(false), nil
}

// hasQuery reports whether u carries a query, including an empty one. A '?'
// outside the fragment only ever appears as the query delimiter.
func hasQuery(u *whatwgUrl.Url) bool {
	return strings.ContainsRune(u.Href(true), '?')
}

func filterQuery(rawQuery string, deny Denylist) string {
	segments := strings.Split(rawQuery, "&")
	kept := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		key, _, _ := strings.Cut(seg, "=")
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if deny.Contains(key) {
			continue
		}
		kept = append(kept, seg)
	}
	return strings.Join(kept, "&")
}
