package types

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrapeError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ScrapeError
		contains []string
	}{
		{
			name:     "client error",
			err:      NewHTTPError("https://example.com", http.StatusNotFound, "Page not found"),
			contains: []string{"Client error", "404 Not Found", "https://example.com", "Page not found"},
		},
		{
			name:     "server error",
			err:      NewHTTPError("https://example.com", http.StatusInternalServerError, "Internal error"),
			contains: []string{"Server error", "500", "Internal error"},
		},
		{
			name:     "timeout",
			err:      NewTimeoutError("https://example.com", errors.New("deadline exceeded")),
			contains: []string{"Timeout error", "deadline exceeded", "https://example.com"},
		},
		{
			name:     "transport",
			err:      NewTransportError("https://example.com", errors.New("connection refused")),
			contains: []string{"Transport error", "connection refused"},
		},
		{
			name:     "invalid url",
			err:      NewInvalidURLError("ftp://example.com", "Unsupported scheme 'ftp'", nil),
			contains: []string{"Invalid URL", "ftp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, c := range tt.contains {
				assert.Contains(t, msg, c)
			}
		})
	}
}

func TestNewHTTPError_Classification(t *testing.T) {
	assert.Equal(t, KindClient, NewHTTPError("u", 400, "").Kind)
	assert.Equal(t, KindClient, NewHTTPError("u", 499, "").Kind)
	assert.Equal(t, KindServer, NewHTTPError("u", 500, "").Kind)
	assert.Equal(t, KindServer, NewHTTPError("u", 503, "").Kind)
	assert.Nil(t, NewHTTPError("u", 200, ""))
	assert.Nil(t, NewHTTPError("u", 302, ""))
}

func TestKindOf(t *testing.T) {
	base := errors.New("dial tcp: connection refused")
	classified := NewTransportError("http://localhost", base)

	assert.Equal(t, KindTransport, KindOf(classified))
	assert.Equal(t, KindTransport, KindOf(errors.Wrap(classified, "scrape")))
	assert.Equal(t, KindUnknown, KindOf(base))
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.True(t, errors.Is(classified, base))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "invalid_url", KindInvalidURL.String())
	assert.Equal(t, "client_error", KindClient.String())
	assert.Equal(t, "server_error", KindServer.String())
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "transport_failure", KindTransport.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}

func TestScrapedPage_JSON(t *testing.T) {
	page := ScrapedPage{
		Title:       "Test Title",
		URL:         "https://example.com",
		Description: StringPtr("Test description"),
	}

	data, err := json.Marshal(page)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"title":"Test Title","url":"https://example.com","description":"Test description","language":null}`,
		string(data))
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	p := StringPtr("en")
	require.NotNil(t, p)
	assert.Equal(t, "en", *p)
}
