package data

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"energy-traffic-light/internal/model"

	"go.uber.org/zap"
)

// HTTPSource fetches series files from a static web root:
// GET {BaseURL}/data/{kind}_power_load.json
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
	Logger  *zap.Logger
}

// NewHTTPSource creates a source rooted at baseURL. A zero timeout defaults to 30s.
func NewHTTPSource(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
		Logger:  logger,
	}
}

// FetchError is returned for non-200 responses.
type FetchError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *FetchError) Error() string {
	return e.Message
}

func (s *HTTPSource) Fetch(ctx context.Context, kind model.SeriesKind) ([]model.PowerLoadEntry, error) {
	if s.BaseURL == "" {
		return nil, fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(s.BaseURL + "/data/" + FileName(kind))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log := s.Logger.With(zap.String("series", string(kind)), zap.String("path", u.Path))
	started := time.Now()
	resp, err := s.Client.Do(req)
	duration := time.Since(started)
	if err != nil {
		log.Warn("series request failed", zap.Error(err), zap.Duration("duration", duration))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Debug("series response", zap.Int("status", resp.StatusCode), zap.Duration("duration", duration))

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, &FetchError{
			StatusCode: resp.StatusCode,
			Code:       "NOT_FOUND",
			Message:    fmt.Sprintf("series file %s not found", u.Path),
		}
	default:
		return nil, &FetchError{
			StatusCode: resp.StatusCode,
			Code:       "FETCH_ERROR",
			Message:    fmt.Sprintf("server returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}

	series, err := DecodeSeries(resp.Body)
	if err != nil {
		log.Warn("series decode failed", zap.Error(err))
		return nil, err
	}
	log.Info("series fetched", zap.Int("entries", len(series)))
	return series, nil
}
