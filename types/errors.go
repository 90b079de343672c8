package types

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Kind classifies a scrape failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidURL
	KindClient
	KindServer
	KindTimeout
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindClient:
		return "client_error"
	case KindServer:
		return "server_error"
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// ScrapeError is the classified error returned by every stage of the pipeline.
type ScrapeError struct {
	Kind Kind
	// URL is the offending value for KindInvalidURL and the requested URL otherwise.
	URL        string
	StatusCode int
	// Body is the truncated response body excerpt of HTTP errors.
	Body   string
	Reason string
	Err    error
}

func (e *ScrapeError) Error() string {
	switch e.Kind {
	case KindInvalidURL:
		return fmt.Sprintf("Invalid URL: %s", e.Reason)
	case KindClient:
		return fmt.Sprintf("Client error (status: %s): %s - %s", statusLine(e.StatusCode), e.URL, e.Body)
	case KindServer:
		return fmt.Sprintf("Server error (status: %s): %s - %s", statusLine(e.StatusCode), e.URL, e.Body)
	case KindTimeout:
		return fmt.Sprintf("Timeout error %s: %s", e.Reason, e.URL)
	case KindTransport:
		return fmt.Sprintf("Transport error %s: %s", e.Reason, e.URL)
	default:
		return fmt.Sprintf("Scrape error %s: %s", e.Reason, e.URL)
	}
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

func statusLine(code int) string {
	if text := http.StatusText(code); text != "" {
		return fmt.Sprintf("%d %s", code, text)
	}
	return fmt.Sprintf("%d", code)
}

// NewInvalidURLError reports a URL that is malformed or uses a disallowed scheme.
func NewInvalidURLError(value, reason string, err error) *ScrapeError {
	return &ScrapeError{Kind: KindInvalidURL, URL: value, Reason: reason, Err: err}
}

// NewHTTPError classifies a 4xx or 5xx response. Other status codes yield nil.
func NewHTTPError(url string, statusCode int, body string) *ScrapeError {
	var kind Kind
	switch {
	case statusCode >= 400 && statusCode < 500:
		kind = KindClient
	case statusCode >= 500 && statusCode < 600:
		kind = KindServer
	default:
		return nil
	}
	return &ScrapeError{Kind: kind, URL: url, StatusCode: statusCode, Body: body}
}

// NewTimeoutError reports a request that did not complete in time.
func NewTimeoutError(url string, err error) *ScrapeError {
	return &ScrapeError{Kind: KindTimeout, URL: url, Reason: err.Error(), Err: err}
}

// NewTransportError reports any other network level failure.
func NewTransportError(url string, err error) *ScrapeError {
	return &ScrapeError{Kind: KindTransport, URL: url, Reason: err.Error(), Err: err}
}

// KindOf returns the classification of err, or KindUnknown if err is not a ScrapeError.
func KindOf(err error) Kind {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}
