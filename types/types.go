package types

// NoTitle is used as the title of pages that do not declare one.
const NoTitle = "No title"

// ScrapedPage - Summary extracted from a single fetched page
type ScrapedPage struct {
	Title string `json:"title"`
	// URL is the canonical URL declared by the page, or the URL that was fetched.
	URL         string  `json:"url"`
	Description *string `json:"description"`
	Language    *string `json:"language"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
