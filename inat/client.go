package inat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonwraymond/taxtree/observe"
	"github.com/jonwraymond/taxtree/resolve"
	"github.com/jonwraymond/taxtree/taxon"
)

// DefaultBaseURL is the public iNaturalist API endpoint.
const DefaultBaseURL = "https://api.inaturalist.org/v1"

// GroupRoots maps the commonly dashboarded iconic groups to their root
// taxon ids.
var GroupRoots = map[string]int64{
	"Insects":    47158,
	"Fungi":      47170,
	"Plants":     47126,
	"Mammals":    40151,
	"Reptiles":   26036,
	"Amphibians": 20978,
}

// ClientConfig holds configuration for a Client.
type ClientConfig struct {
	// BaseURL overrides the API endpoint. Defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient overrides the underlying HTTP client.
	// Defaults to a client with a 20 second timeout.
	HTTPClient *http.Client

	// UserAgent is sent with every request.
	UserAgent string

	Logger observe.Logger // Optional: defaults to NopLogger
}

// Client is a typed iNaturalist API client.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
	logger    observe.Logger
}

var _ resolve.Source = (*Client)(nil)

// NewClient creates a Client from the given configuration.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observe.NopLogger()
	}

	return &Client{
		baseURL:   baseURL,
		http:      httpClient,
		userAgent: cfg.UserAgent,
		logger:    logger.WithComponent("inat"),
	}
}

// taxonPayload is the wire shape of a taxon in API responses.
type taxonPayload struct {
	ID                  int64   `json:"id"`
	Name                string  `json:"name"`
	Rank                string  `json:"rank"`
	PreferredCommonName string  `json:"preferred_common_name"`
	AncestorIDs         []int64 `json:"ancestor_ids"`
}

type taxaResponse struct {
	TotalResults int            `json:"total_results"`
	Results      []taxonPayload `json:"results"`
}

// FetchTaxon fetches the record for a taxon id via GET /taxa/{id}.
func (c *Client) FetchTaxon(ctx context.Context, id int64) (taxon.Record, error) {
	var payload taxaResponse
	path := "/taxa/" + strconv.FormatInt(id, 10)
	if err := c.getJSON(ctx, path, nil, &payload); err != nil {
		return taxon.Record{}, err
	}
	if len(payload.Results) == 0 {
		return taxon.Record{}, fmt.Errorf("%w: taxon %d", resolve.ErrNotFound, id)
	}

	return recordFromPayload(payload.Results[0])
}

func recordFromPayload(p taxonPayload) (taxon.Record, error) {
	rank, err := taxon.ParseRank(p.Rank)
	if err != nil {
		return taxon.Record{}, fmt.Errorf("taxon %d (%s): %w", p.ID, p.Name, err)
	}

	// The API lists the taxon itself in its own ancestry.
	ancestors := make([]int64, 0, len(p.AncestorIDs))
	for _, aid := range p.AncestorIDs {
		if aid == p.ID {
			continue
		}
		ancestors = append(ancestors, aid)
	}

	return taxon.Record{
		ID:          p.ID,
		Name:        p.Name,
		Rank:        rank,
		CommonName:  p.PreferredCommonName,
		AncestorIDs: ancestors,
	}, nil
}

type speciesCountsResponse struct {
	TotalResults int `json:"total_results"`
	Results      []struct {
		Count int          `json:"count"`
		Taxon taxonPayload `json:"taxon"`
	} `json:"results"`
}

// SpeciesObserved lists the species a user has observed under the given
// root taxon, paging through GET /observations/species_counts. A zero
// rootID means no taxon scope.
func (c *Client) SpeciesObserved(ctx context.Context, userLogin string, rootID int64) ([]int64, error) {
	if userLogin == "" {
		return nil, fmt.Errorf("inat: user login is required")
	}

	const perPage = 200
	var species []int64
	for page := 1; ; page++ {
		query := url.Values{
			"user_login": {userLogin},
			"rank":       {"species"},
			"per_page":   {strconv.Itoa(perPage)},
			"page":       {strconv.Itoa(page)},
		}
		if rootID != 0 {
			query.Set("taxon_id", strconv.FormatInt(rootID, 10))
		}

		var payload speciesCountsResponse
		if err := c.getJSON(ctx, "/observations/species_counts", query, &payload); err != nil {
			return nil, err
		}
		for _, result := range payload.Results {
			species = append(species, result.Taxon.ID)
		}
		if len(payload.Results) < perPage || len(species) >= payload.TotalResults {
			break
		}
	}

	c.logger.Debug(ctx, "species listed",
		observe.Field{Key: "user", Value: userLogin},
		observe.Field{Key: "root_id", Value: rootID},
		observe.Field{Key: "species", Value: len(species)},
	)
	return species, nil
}

// getJSON performs a GET request and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("inat: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", resolve.ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", resolve.ErrNotFound, path)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s returned %d", resolve.ErrTransient, path, resp.StatusCode)
	default:
		return fmt.Errorf("inat: %s returned %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("inat: decode %s: %w", path, err)
	}
	return nil
}
