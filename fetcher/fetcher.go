package fetcher

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/andybalholm/brotli"
	ierrors "github.com/cnosuke/pagemeta/internal/errors"
	"github.com/cnosuke/pagemeta/types"
	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/http/httpguts"
)

const (
	// ErrorBodyLimit is the number of body bytes kept in HTTP error reports.
	ErrorBodyLimit = 200
	// TruncationMarker is appended to error bodies longer than ErrorBodyLimit.
	TruncationMarker = "... [truncated]"
	// DefaultMaxBodyBytes caps how much of a response body is read.
	DefaultMaxBodyBytes = 10 << 20

	unreadableBody = "Unable to read response body"
	acceptEncoding = "gzip, deflate, br"
	maxRedirects   = 10
)

type Config struct {
	// MaxBodyBytes limits the decoded body size. Zero or less means no limit.
	MaxBodyBytes int64
}

// Request describes a single fetch.
type Request struct {
	URL string
	// Timeout bounds the whole request including the body transfer. Zero means no limit.
	Timeout   time.Duration
	UserAgent string
}

// Response is a successfully fetched page.
type Response struct {
	URL string
	// FinalURL is the URL after following redirects.
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        string
}

// Fetcher defines the interface for retrieving a single page.
type Fetcher interface {
	// Fetch performs one GET request without retries. Failures are
	// returned as *types.ScrapeError.
	Fetch(ctx context.Context, req Request) (*Response, error)
}

// httpFetcher implements the Fetcher interface using HTTP.
// The underlying client is shared between calls and safe for concurrent use.
type httpFetcher struct {
	client       *http.Client
	maxBodyBytes int64
}

// NewHTTPFetcher creates a new httpFetcher.
func NewHTTPFetcher(cfg *Config) (Fetcher, error) {
	zap.S().Infow("creating new HTTP fetcher",
		"max_body_bytes", cfg.MaxBodyBytes)

	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, errors.New("default transport is not an *http.Transport")
	}
	transport := base.Clone()
	transport.DisableCompression = true

	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errors.Newf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}

	return &httpFetcher{
		client:       client,
		maxBodyBytes: cfg.MaxBodyBytes,
	}, nil
}

// Fetch retrieves r.URL and classifies the outcome.
func (f *httpFetcher) Fetch(ctx context.Context, r Request) (*Response, error) {
	zap.S().Debugw("fetching URL",
		"url", r.URL,
		"timeout", r.Timeout,
		"user_agent", r.UserAgent)

	if !httpguts.ValidHeaderFieldValue(r.UserAgent) {
		return nil, types.NewTransportError(r.URL,
			errors.Newf("invalid User-Agent header value %q", r.UserAgent))
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, types.NewTransportError(r.URL, ierrors.Wrap(err, "failed to create request"))
	}
	req.Header.Set("User-Agent", r.UserAgent)
	req.Header.Set("Accept-Encoding", acceptEncoding)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(ctx, r.URL, ierrors.Wrap(err, "failed to execute request"))
	}
	defer resp.Body.Close()

	if httpErr := types.NewHTTPError(r.URL, resp.StatusCode, ""); httpErr != nil {
		body, readErr := f.readBody(resp)
		if readErr != nil {
			body = unreadableBody
		}
		httpErr.Body = truncateBody(body)
		zap.S().Debugw("request failed with HTTP error",
			"url", r.URL,
			"status", resp.StatusCode,
			"kind", httpErr.Kind.String())
		return nil, httpErr
	}

	body, err := f.readBody(resp)
	if err != nil {
		return nil, classify(ctx, r.URL, ierrors.Wrap(err, "failed to read response body"))
	}

	zap.S().Debugw(
		"response received",
		"url", r.URL,
		"final_url", resp.Request.URL.String(),
		"status", resp.StatusCode,
		"content-length", resp.ContentLength,
		"content_encoding", resp.Header.Get("Content-Encoding"),
		"bytes", len(body),
		"content_type", resp.Header.Get("Content-Type"),
	)

	return &Response{
		URL:         r.URL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// readBody decodes the transfer encoding and the declared charset of resp.
func (f *httpFetcher) readBody(resp *http.Response) (string, error) {
	decoded, err := contentDecoder(resp)
	if err != nil {
		return "", err
	}
	if decoded == nil {
		return "", nil
	}
	defer decoded.Close()

	var reader io.Reader = decoded
	if f.maxBodyBytes > 0 {
		reader = io.LimitReader(decoded, f.maxBodyBytes)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return toUTF8(raw, resp.Header.Get("Content-Type")), nil
}

// contentDecoder wraps the body according to Content-Encoding. A nil reader
// means the body is empty.
func contentDecoder(resp *http.Response) (io.ReadCloser, error) {
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	var (
		rc  io.ReadCloser
		err error
	)
	switch encoding {
	case "", "identity":
		return io.NopCloser(resp.Body), nil
	case "gzip", "x-gzip":
		rc, err = gzip.NewReader(resp.Body)
	case "deflate":
		rc, err = deflateReader(resp.Body)
	case "br":
		rc = io.NopCloser(brotli.NewReader(resp.Body))
	default:
		return nil, errors.Newf("unsupported content encoding %q", encoding)
	}
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, ierrors.Wrapf(err, "failed to decode %s body", encoding)
	}
	return rc, nil
}

// deflateReader reads a "deflate" body, which servers send either zlib
// wrapped or as a raw DEFLATE stream.
func deflateReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(2)
	if len(header) == 0 && errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if isZlibHeader(header) {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}

// isZlibHeader reports whether h starts with a zlib CMF/FLG pair using the
// deflate method.
func isZlibHeader(h []byte) bool {
	if len(h) < 2 {
		return false
	}
	return h[0]&0x0f == 8 && (uint16(h[0])<<8|uint16(h[1]))%31 == 0
}

// toUTF8 converts raw to UTF-8 using the charset from contentType, a BOM or a
// <meta charset> declaration. Undecodable input is returned as is.
func toUTF8(raw []byte, contentType string) string {
	enc, name, _ := charset.DetermineEncoding(raw, contentType)
	if name == "utf-8" || enc == nil {
		return string(raw)
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		zap.S().Debugw("charset decoding failed, keeping raw body", "charset", name, "error", err)
		return string(raw)
	}
	return string(decoded)
}

// truncateBody keeps at most ErrorBodyLimit bytes without splitting a rune.
func truncateBody(body string) string {
	if len(body) <= ErrorBodyLimit {
		return body
	}
	cut := ErrorBodyLimit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + TruncationMarker
}

func classify(ctx context.Context, url string, err error) error {
	if isTimeout(ctx, err) {
		return types.NewTimeoutError(url, err)
	}
	return types.NewTransportError(url, err)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
