// Package render formats a scraped page for terminal output.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	ierrors "github.com/cnosuke/pagemeta/internal/errors"
	"github.com/cnosuke/pagemeta/types"
	"github.com/cockroachdb/errors"
)

// Style selects how much of the page a markdown rendering shows.
type Style string

const (
	// StyleFull renders a list item with the description underneath.
	StyleFull Style = "full"
	// StyleLink renders a bare markdown link.
	StyleLink Style = "link"
)

// Format selects the output encoding.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseStyle returns the Style named s. An empty name selects StyleFull.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case "", StyleFull:
		return StyleFull, nil
	case StyleLink:
		return StyleLink, nil
	}
	return "", errors.Newf("unknown style %q (expected %q or %q)", s, StyleFull, StyleLink)
}

// ParseFormat returns the Format named s. An empty name selects FormatMarkdown.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatMarkdown:
		return FormatMarkdown, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", errors.Newf("unknown format %q (expected %q or %q)", s, FormatMarkdown, FormatJSON)
}

// Write renders page to w. The style is ignored for JSON output.
func Write(w io.Writer, page *types.ScrapedPage, style Style, format Format) error {
	var err error
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		err = enc.Encode(page)
	case FormatMarkdown:
		err = writeMarkdown(w, page, style)
	default:
		return errors.Newf("unknown format %q", format)
	}
	return ierrors.Wrap(err, "failed to write output")
}

func writeMarkdown(w io.Writer, page *types.ScrapedPage, style Style) error {
	if style == StyleLink {
		_, err := fmt.Fprintf(w, "[%s](%s)\n", page.Title, page.URL)
		return err
	}

	if _, err := fmt.Fprintf(w, "- [%s](%s)", page.Title, page.URL); err != nil {
		return err
	}
	if page.Description != nil {
		if _, err := fmt.Fprintf(w, "\\\n%s", *page.Description); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}
