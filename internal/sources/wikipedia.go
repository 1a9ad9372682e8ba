package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/scouthq/scout/internal/config"
	"github.com/scouthq/scout/internal/models"
)

// WikipediaAdapter fetches search results from the Wikipedia API.
// Encyclopedic reference, no dates or engagement (Tier 3).
type WikipediaAdapter struct {
	client     *resty.Client
	baseURL    string
	articleURL string
}

type wikiSearchResponse struct {
	Query struct {
		Search []wikiResult `json:"search"`
	} `json:"query"`
}

type wikiResult struct {
	PageID  int64  `json:"pageid"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// NewWikipedia creates the Wikipedia adapter.
func NewWikipedia(cfg *config.Config) *WikipediaAdapter {
	return &WikipediaAdapter{
		client:     newClient(cfg.UserAgent, cfg.Timeout),
		baseURL:    "https://en.wikipedia.org",
		articleURL: "https://en.wikipedia.org/wiki/",
	}
}

func (w *WikipediaAdapter) Name() string { return NameWikipedia }

func (w *WikipediaAdapter) Enabled() bool { return true }

func (w *WikipediaAdapter) Info() Info {
	return Info{
		Name:             NameWikipedia,
		Description:      "Wikipedia article search",
		EngagementFields: nil,
		Notes:            "encyclopedic reference, no engagement signal",
	}
}

func (w *WikipediaAdapter) Fetch(ctx context.Context, query string, limit int) ([]models.Record, error) {
	searchURL := fmt.Sprintf("%s/w/api.php?action=query&format=json&list=search&srsearch=%s&srlimit=%d",
		w.baseURL, url.QueryEscape(query), limit)

	resp, err := w.client.R().SetContext(ctx).Get(searchURL)
	if err != nil {
		return nil, upstreamErr(NameWikipedia, "request failed", err)
	}
	if resp.StatusCode() != 200 {
		return nil, statusErr(NameWikipedia, resp.StatusCode())
	}

	var parsed wikiSearchResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, upstreamErr(NameWikipedia, "JSON parse error", err)
	}

	records := make([]models.Record, 0, limit)
	for _, result := range parsed.Query.Search {
		if len(records) >= limit {
			break
		}

		pageURL := w.articleURL + url.PathEscape(strings.ReplaceAll(result.Title, " ", "_"))
		records = append(records, models.Record{
			ID:             fmt.Sprintf("%d", result.PageID),
			Source:         NameWikipedia,
			Title:          result.Title,
			URL:            pageURL,
			Snippet:        htmlTagRe.ReplaceAllString(result.Snippet, ""),
			DateConfidence: models.ConfidenceLow,
			Relevance:      0.6,
		})
	}

	return records, nil
}

func (w *WikipediaAdapter) Probe(ctx context.Context) error {
	_, err := w.Fetch(ctx, "go", 1)
	return err
}
