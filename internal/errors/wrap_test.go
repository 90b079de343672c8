package errors

import (
	"testing"

	"github.com/cnosuke/pagemeta/types"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		wrap     func(error) error
		expected string
	}{
		{
			name:     "wrap",
			wrap:     func(err error) error { return Wrap(err, "failed to read response body") },
			expected: "failed to read response body: unexpected EOF",
		},
		{
			name:     "wrapf",
			wrap:     func(err error) error { return Wrapf(err, "failed to decode %s body", "gzip") },
			expected: "failed to decode gzip body: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := errors.New("unexpected EOF")
			wrapped := tt.wrap(base)

			require.NotNil(t, wrapped)
			assert.Equal(t, tt.expected, wrapped.Error())
			assert.True(t, errors.Is(wrapped, base))

			assert.Nil(t, tt.wrap(nil))
		})
	}
}

func TestWrap_KeepsScrapeErrorKind(t *testing.T) {
	scrapeErr := types.NewHTTPError("https://example.com/", 503, "unavailable")
	wrapped := Wrapf(scrapeErr, "scrape of %s", "https://example.com/")

	assert.Equal(t, types.KindServer, types.KindOf(wrapped))

	var target *types.ScrapeError
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, 503, target.StatusCode)
}
