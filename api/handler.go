package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/cnosuke/pagemeta/scraper"
	"github.com/cnosuke/pagemeta/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// invalidRequest is reported for malformed query parameters.
const invalidRequest = "invalid_request"

// PageScraper is the part of *scraper.Scraper used by the handlers.
type PageScraper interface {
	Scrape(ctx context.Context, rawURL string, opts scraper.Options) (*types.ScrapedPage, error)
}

// ErrorDetail is the error body of failed requests.
type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error ErrorDetail `json:"error"`
}

// Health handles GET /healthz.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Scrape handles GET /v1/scrape.
func Scrape(s PageScraper, defaults scraper.Options, m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawURL := c.Query("url")

		opts := defaults
		if v := c.Query("strip_tracking"); v != "" {
			strip, err := strconv.ParseBool(v)
			if err != nil {
				respondError(c, http.StatusBadRequest, invalidRequest, "strip_tracking must be a boolean")
				return
			}
			opts.StripTracking = strip
		}
		if v := c.Query("timeout"); v != "" {
			seconds, err := strconv.ParseFloat(v, 64)
			if err != nil || seconds <= 0 {
				respondError(c, http.StatusBadRequest, invalidRequest, "timeout must be a positive number of seconds")
				return
			}
			opts.Timeout = time.Duration(seconds * float64(time.Second))
		}

		start := time.Now()
		page, err := s.Scrape(c.Request.Context(), rawURL, opts)
		if err != nil {
			kind := types.KindOf(err)
			m.observe(kind.String(), time.Since(start))
			zap.S().Warnw("scrape failed",
				"request_id", c.GetString(requestIDKey),
				"url", rawURL,
				"kind", kind.String(),
				"error", err)
			respondError(c, statusFor(kind), kind.String(), err.Error())
			return
		}
		m.observe("ok", time.Since(start))

		c.JSON(http.StatusOK, page)
	}
}

func respondError(c *gin.Context, status int, kind, message string) {
	c.JSON(status, errorResponse{Error: ErrorDetail{Kind: kind, Message: message}})
}

func statusFor(kind types.Kind) int {
	switch kind {
	case types.KindInvalidURL:
		return http.StatusBadRequest
	case types.KindClient, types.KindServer, types.KindTransport:
		return http.StatusBadGateway
	case types.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
