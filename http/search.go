package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fwojciec/adamsdoc"
	"github.com/fwojciec/adamsdoc/retry"
)

var _ adamsdoc.SearchStrategy = (*SearchAPI)(nil)

// SearchAPI queries the registry's JSON search endpoint.
type SearchAPI struct {
	cfg    config
	client *http.Client
}

// NewSearchAPI creates a SearchAPI.
func NewSearchAPI(opts ...Option) *SearchAPI {
	cfg := newConfig(DefaultAPITimeout, opts)
	return &SearchAPI{
		cfg:    cfg,
		client: newClient(cfg.timeout),
	}
}

// Name implements adamsdoc.SearchStrategy.
func (s *SearchAPI) Name() string {
	return "api"
}

type searchRequest struct {
	Q               string `json:"q"`
	Filters         []any  `json:"filters"`
	LegacyLibFilter bool   `json:"legacyLibFilter"`
	MainLibFilter   bool   `json:"mainLibFilter"`
	Sort            string `json:"sort"`
	SortDirection   int    `json:"sortDirection"`
}

type searchResponse struct {
	Results []apiDocument `json:"results"`
}

// apiDocument tolerates the endpoint's inconsistent key casing: encoding/json
// matches keys case-insensitively, and DocumentTitle is an alternate title key.
type apiDocument struct {
	AccessionNumber string `json:"accessionNumber"`
	Title           string `json:"title"`
	DocumentTitle   string `json:"DocumentTitle"`
	DateAdded       string `json:"dateAdded"`
	DocumentDate    string `json:"documentDate"`
}

// Search posts the query to the API and returns up to maxResults descriptors.
func (s *SearchAPI) Search(ctx context.Context, query string, maxResults int) ([]*adamsdoc.Descriptor, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, adamsdoc.Errorf(adamsdoc.EINVALID, "search query required")
	}

	body, err := json.Marshal(searchRequest{
		Q:               query,
		Filters:         []any{},
		LegacyLibFilter: true,
		MainLibFilter:   true,
		SortDirection:   1,
	})
	if err != nil {
		return nil, err
	}

	resp, err := retry.Do(ctx, s.cfg.policy, "API search", func(ctx context.Context) (*searchResponse, error) {
		return s.post(ctx, body)
	})
	if err != nil {
		return nil, err
	}

	docs := make([]*adamsdoc.Descriptor, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.AccessionNumber == "" {
			continue
		}
		title := r.Title
		if title == "" {
			title = r.DocumentTitle
		}
		docs = append(docs, &adamsdoc.Descriptor{
			ID:           r.AccessionNumber,
			Title:        title,
			DateAdded:    r.DateAdded,
			DocumentDate: r.DocumentDate,
			SourceURL:    adamsdoc.AlternateURL(r.AccessionNumber),
		})
		if maxResults > 0 && len(docs) == maxResults {
			break
		}
	}
	return docs, nil
}

func (s *SearchAPI) post(ctx context.Context, body []byte) (*searchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, requestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, s.cfg.endpoint)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, retry.Permanent(adamsdoc.Errorf(adamsdoc.ECONTENT, "invalid search response: %v", err))
	}
	return &out, nil
}
