// Package rates fetches the daily USD conversion snapshot from
// exchangerate-api.com. The snapshot is taken once at process start and
// treated as immutable afterwards.
package rates

import (
	"encoding/json"
	"fmt"

	"github.com/valyala/fasthttp"

	"github.com/joaquinmenendez/demo-api-meli/models"
	"github.com/joaquinmenendez/demo-api-meli/utils"
)

// DefaultBaseURL is the public exchangerate-api.com host.
const DefaultBaseURL = "https://v6.exchangerate-api.com"

type snapshotResponse struct {
	Result          string             `json:"result"`
	ErrorType       string             `json:"error-type"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// Client fetches one USD-based rate snapshot.
type Client struct {
	baseURL string
	apiKey  string
	logger  *utils.Logger
}

// NewClient creates a Client using the public endpoint.
func NewClient(apiKey string, logger *utils.Logger) *Client {
	return &Client{baseURL: DefaultBaseURL, apiKey: apiKey, logger: logger}
}

// NewClientWithBaseURL creates a Client against an alternative host,
// used by tests to point at a mock server.
func NewClientWithBaseURL(baseURL, apiKey string, logger *utils.Logger) *Client {
	return &Client{baseURL: baseURL, apiKey: apiKey, logger: logger}
}

// Fetch retrieves the latest USD conversion rates. Any failure here is
// fatal to the caller: enrichment cannot run without a rate map.
func (c *Client) Fetch() (models.RateMap, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/v6/%s/latest/USD", c.baseURL, c.apiKey))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	if err := fasthttp.Do(req, resp); err != nil {
		return nil, fmt.Errorf("rates: snapshot request: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("rates: snapshot returned status %d", resp.StatusCode())
	}

	var sr snapshotResponse
	if err := json.Unmarshal(resp.Body(), &sr); err != nil {
		return nil, fmt.Errorf("rates: decode snapshot: %w", err)
	}
	if sr.ErrorType != "" {
		return nil, fmt.Errorf("rates: snapshot error: %s", sr.ErrorType)
	}
	if len(sr.ConversionRates) == 0 {
		return nil, fmt.Errorf("rates: snapshot carried no conversion rates")
	}

	c.logger.Info("[rates] Snapshot loaded: %d currencies against USD", len(sr.ConversionRates))
	return models.RateMap(sr.ConversionRates), nil
}
