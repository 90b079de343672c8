package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Metadata is the page summary declared by an HTML document.
// A nil field means the document does not declare it.
type Metadata struct {
	Title       *string
	Description *string
	Language    *string
	// URL is the canonical URL as written in the document, possibly relative.
	URL *string
}

// Extract parses doc and returns the metadata it declares.
// It never fails: markup that cannot be parsed yields empty Metadata.
func Extract(doc string) Metadata {
	var meta Metadata

	root, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		zap.S().Debugw("document could not be parsed, returning empty metadata", "error", err)
		return meta
	}

	meta.Title = nonEmpty(collapseSpace(root.Find("title").First().Text()))
	meta.Language = nonEmpty(strings.TrimSpace(root.Find("html").First().AttrOr("lang", "")))
	meta.Description = findDescription(root)
	meta.URL = findCanonical(root)

	zap.S().Debugw("extracted metadata",
		"has_title", meta.Title != nil,
		"has_description", meta.Description != nil,
		"has_language", meta.Language != nil,
		"has_url", meta.URL != nil)

	return meta
}

func findDescription(root *goquery.Document) *string {
	var desc *string
	root.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		if !strings.EqualFold(strings.TrimSpace(name), "description") {
			return true
		}
		desc = nonEmpty(strings.TrimSpace(s.AttrOr("content", "")))
		return false
	})
	return desc
}

// findCanonical prefers <link rel="canonical"> and falls back to og:url.
func findCanonical(root *goquery.Document) *string {
	var canonical *string
	root.Find("link[rel][href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !hasRelToken(s.AttrOr("rel", ""), "canonical") {
			return true
		}
		canonical = nonEmpty(strings.TrimSpace(s.AttrOr("href", "")))
		return canonical == nil
	})
	if canonical != nil {
		return canonical
	}

	root.Find("meta[property]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.EqualFold(s.AttrOr("property", ""), "og:url") {
			return true
		}
		canonical = nonEmpty(strings.TrimSpace(s.AttrOr("content", "")))
		return canonical == nil
	})
	return canonical
}

func hasRelToken(rel, token string) bool {
	for _, f := range strings.Fields(rel) {
		if strings.EqualFold(f, token) {
			return true
		}
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
