package meli

import (
	"encoding/json"
	"fmt"

	"github.com/valyala/fasthttp"

	"github.com/joaquinmenendez/demo-api-meli/utils"
)

const (
	// DefaultBaseURL is the public MercadoLibre API host.
	DefaultBaseURL = "https://api.mercadolibre.com"
	// PageSize is the number of listings per search page; the offset
	// advances by this much on every page.
	PageSize = 50
)

// searchResponse is the envelope of one search page. Only the parts the
// pipeline cares about are decoded; each result stays raw JSON for the
// extractor to query.
type searchResponse struct {
	Results []json.RawMessage `json:"results"`
	Error   string            `json:"error"`
}

// Scraper pages through the MercadoLibre search endpoint site by site.
type Scraper struct {
	baseURL string
	logger  *utils.Logger
}

// New creates a Scraper against the public API.
func New(logger *utils.Logger) *Scraper {
	return &Scraper{baseURL: DefaultBaseURL, logger: logger}
}

// NewWithBaseURL creates a Scraper against an alternative host, used by
// tests to point at a mock server.
func NewWithBaseURL(baseURL string, logger *utils.Logger) *Scraper {
	return &Scraper{baseURL: baseURL, logger: logger}
}

// Search collects up to pageLimit pages of listings for every site in
// sites, filtered by the site-prefixed category key. Results keep
// site-then-page-then-item order.
//
// Collection per site is best effort: an API-level error or an empty
// page ends that site's pagination (pages already collected are kept)
// and the next site proceeds. Nothing is retried.
func (s *Scraper) Search(sites []string, category string, pageLimit int) []json.RawMessage {
	var all []json.RawMessage

	for _, site := range sites {
		categoryKey := site + category

		for page := 0; page < pageLimit; page++ {
			offset := PageSize * page

			url := fmt.Sprintf("%s/sites/%s/search?category=%s&offset=%d",
				s.baseURL, site, categoryKey, offset)
			resp, err := s.getPage(url)
			if err != nil {
				s.logger.Warn("[meli] %s at offset %d: %v — stopping this site", categoryKey, offset, err)
				break
			}
			if resp.Error != "" {
				s.logger.Warn("[meli] %s on the offset %d returned: %s", categoryKey, offset, resp.Error)
				break
			}
			if len(resp.Results) == 0 {
				break
			}

			all = append(all, resp.Results...)
		}
	}

	return all
}

func (s *Scraper) getPage(url string) (*searchResponse, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	if err := fasthttp.Do(req, resp); err != nil {
		return nil, fmt.Errorf("meli: search request: %w", err)
	}

	var sr searchResponse
	if err := json.Unmarshal(resp.Body(), &sr); err != nil {
		return nil, fmt.Errorf("meli: decode search response (status %d): %w", resp.StatusCode(), err)
	}

	// Error pages usually come with a non-200 status and an error field;
	// the field is surfaced to the caller for its diagnostic. A bad
	// status with no error payload is still a failed page.
	if resp.StatusCode() != fasthttp.StatusOK && sr.Error == "" {
		return nil, fmt.Errorf("meli: search returned status %d", resp.StatusCode())
	}

	return &sr, nil
}
