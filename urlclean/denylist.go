package urlclean

import "sort"

// defaultTrackingParams lists query keys used for analytics and attribution.
// Matching is case-sensitive: "UTM_SOURCE" is not the same key as "utm_source".
var defaultTrackingParams = []string{
	// Google Analytics & Ads
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"gclid", "gclsrc", "dclid", "fbclid",

	// Social media
	"igshid", "twclid", "ttclid", "li_fat_id",

	// Email marketing
	"_hsenc", "_hsmi", "vero_conv", "vero_id",

	// Other common trackers
	"ref", "referrer", "source", "campaign", "medium",
	"msclkid", "mc_cid", "mc_eid", "pk_source", "pk_medium", "pk_campaign",

	// Amazon
	"tag", "linkCode", "creativeASIN", "linkId",

	// Generic
	"track", "tracking", "tracker", "affiliate", "aff", "sid",
}

var defaultDenylist = NewDenylist(defaultTrackingParams...)

// Denylist is an immutable set of query keys removed by Strip.
type Denylist struct {
	keys map[string]struct{}
}

// NewDenylist builds a Denylist from the given keys. Empty keys are ignored.
func NewDenylist(keys ...string) Denylist {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k != "" {
			m[k] = struct{}{}
		}
	}
	return Denylist{keys: m}
}

// DefaultDenylist returns the built-in tracking parameter list.
func DefaultDenylist() Denylist {
	return defaultDenylist
}

// With returns a new Denylist holding the keys of d plus keys. d is left unchanged.
func (d Denylist) With(keys ...string) Denylist {
	merged := make([]string, 0, len(d.keys)+len(keys))
	for k := range d.keys {
		merged = append(merged, k)
	}
	merged = append(merged, keys...)
	return NewDenylist(merged...)
}

// Contains reports whether key exactly matches an entry.
func (d Denylist) Contains(key string) bool {
	_, ok := d.keys[key]
	return ok
}

// Len returns the number of entries.
func (d Denylist) Len() int {
	return len(d.keys)
}

// Keys returns the entries in sorted order.
func (d Denylist) Keys() []string {
	keys := make([]string, 0, len(d.keys))
	for k := range d.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
