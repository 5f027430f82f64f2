package altimetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"fieldmap/internal/geodesy"
)

// ErrMissingCredential is returned before any network attempt when the
// elevation service credential is absent or still the placeholder.
var ErrMissingCredential = errors.New("elevation service credential is not configured")

const credentialPlaceholder = "YOUR_API_KEY"

// HTTPDoer lets tests substitute the HTTP transport.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the external elevation web service. The request carries
// pipe-delimited parallel longitude and latitude lists plus a z-only flag;
// the response is an ordered array of elevations aligned with the request.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	log        *zap.Logger
}

// NewClient creates an elevation client for the given service endpoint.
func NewClient(apiKey, baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return NewClientWithHTTPDoer(apiKey, baseURL, &http.Client{Timeout: timeout}, log)
}

// NewClientWithHTTPDoer creates a client with a custom transport, used by
// tests.
func NewClientWithHTTPDoer(apiKey, baseURL string, doer HTTPDoer, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{apiKey: apiKey, baseURL: baseURL, httpClient: doer, log: log}
}

type elevationResponse struct {
	Elevations []float64 `json:"elevations"`
}

// Elevations batch-requests the elevation of every point, in order. A
// missing credential short-circuits with ErrMissingCredential and no
// network call.
func (c *Client) Elevations(ctx context.Context, points []geodesy.LatLng) ([]float64, error) {
	if c.apiKey == "" || c.apiKey == credentialPlaceholder {
		return nil, ErrMissingCredential
	}
	if len(points) == 0 {
		return nil, errors.New("no points to sample")
	}

	lngs := make([]string, len(points))
	lats := make([]string, len(points))
	for i, p := range points {
		lngs[i] = strconv.FormatFloat(p.Lng, 'f', 6, 64)
		lats[i] = strconv.FormatFloat(p.Lat, 'f', 6, 64)
	}
	params := url.Values{}
	params.Set("lon", strings.Join(lngs, "|"))
	params.Set("lat", strings.Join(lats, "|"))
	params.Set("zonly", "true")
	params.Set("apikey", c.apiKey)

	requestURL := fmt.Sprintf("%s/alti/rest/elevation.json?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.log.Debug("requesting elevations", zap.Int("points", len(points)))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 401 || resp.StatusCode == 403 {
		return nil, fmt.Errorf("elevation service rejected credential (%d)", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("elevation service error %d: %s", resp.StatusCode, string(body))
	}

	var parsed elevationResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode elevation response: %w", err)
	}
	if len(parsed.Elevations) != len(points) {
		return nil, fmt.Errorf("elevation service returned %d values for %d points", len(parsed.Elevations), len(points))
	}
	return parsed.Elevations, nil
}
