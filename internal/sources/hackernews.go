package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/scouthq/scout/internal/config"
	"github.com/scouthq/scout/internal/dates"
	"github.com/scouthq/scout/internal/models"
)

// HackerNewsAdapter fetches stories from the HN Algolia search API.
type HackerNewsAdapter struct {
	client  *resty.Client
	baseURL string
}

type hnSearchResponse struct {
	Hits []hnHit `json:"hits"`
}

type hnHit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	CreatedAtI  int64  `json:"created_at_i"`
	Points      *int   `json:"points"`
	NumComments *int   `json:"num_comments"`
}

// NewHackerNews creates the Hacker News adapter.
func NewHackerNews(cfg *config.Config) *HackerNewsAdapter {
	return &HackerNewsAdapter{
		client:  newClient(cfg.UserAgent, cfg.Timeout),
		baseURL: "https://hn.algolia.com/api/v1",
	}
}

func (h *HackerNewsAdapter) Name() string { return NameHackerNews }

func (h *HackerNewsAdapter) Enabled() bool { return true } // no auth required

func (h *HackerNewsAdapter) Info() Info {
	return Info{
		Name:             NameHackerNews,
		Description:      "Hacker News stories via the Algolia search API",
		EngagementFields: []string{"points", "num_comments"},
	}
}

func (h *HackerNewsAdapter) Fetch(ctx context.Context, query string, limit int) ([]models.Record, error) {
	searchURL := fmt.Sprintf("%s/search?query=%s&tags=story&hitsPerPage=%d",
		h.baseURL, url.QueryEscape(query), limit)

	resp, err := h.client.R().SetContext(ctx).Get(searchURL)
	if err != nil {
		return nil, upstreamErr(NameHackerNews, "request failed", err)
	}
	if resp.StatusCode() != 200 {
		return nil, statusErr(NameHackerNews, resp.StatusCode())
	}

	var parsed hnSearchResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, upstreamErr(NameHackerNews, "JSON parse error", err)
	}

	records := make([]models.Record, 0, limit)
	for _, hit := range parsed.Hits {
		if len(records) >= limit {
			break
		}

		day := dates.TimestampToDay(hit.CreatedAtI)
		hnURL := fmt.Sprintf("https://news.ycombinator.com/item?id=%s", hit.ObjectID)
		storyURL := hit.URL
		if storyURL == "" {
			storyURL = hnURL
		}

		records = append(records, models.Record{
			ID:             hit.ObjectID,
			Source:         NameHackerNews,
			Title:          hit.Title,
			URL:            storyURL,
			Author:         hit.Author,
			DiscussionURL:  hnURL,
			Date:           day,
			DateConfidence: dates.Confidence(day, storyURL),
			Relevance:      0.7,
			Engagement: &models.Engagement{
				Points:      hit.Points,
				NumComments: hit.NumComments,
			},
		})
	}

	return records, nil
}

func (h *HackerNewsAdapter) Probe(ctx context.Context) error {
	_, err := h.Fetch(ctx, "go", 1)
	return err
}
