package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/scouthq/scout/internal/config"
	"github.com/scouthq/scout/internal/models"
)

const ddgMaxTopics = 3

// DuckDuckGoAdapter fetches instant answers from the DuckDuckGo API. Instant
// answers are supplementary reference material, not full search results: one
// abstract plus a few related topics, no dates, no engagement (Tier 3).
type DuckDuckGoAdapter struct {
	client  *resty.Client
	baseURL string
}

type ddgResponse struct {
	Heading       string          `json:"Heading"`
	Abstract      string          `json:"Abstract"`
	AbstractURL   string          `json:"AbstractURL"`
	RelatedTopics json.RawMessage `json:"RelatedTopics"`
}

// ddgTopic tolerates the mixed RelatedTopics array, which interleaves plain
// topics with grouped sub-topic objects; only entries carrying Text count.
type ddgTopic struct {
	Text     string `json:"Text"`
	FirstURL string `json:"FirstURL"`
}

// NewDuckDuckGo creates the DuckDuckGo adapter.
func NewDuckDuckGo(cfg *config.Config) *DuckDuckGoAdapter {
	return &DuckDuckGoAdapter{
		client:  newClient(cfg.UserAgent, cfg.Timeout),
		baseURL: "https://api.duckduckgo.com",
	}
}

func (d *DuckDuckGoAdapter) Name() string { return NameDuckDuckGo }

func (d *DuckDuckGoAdapter) Enabled() bool { return true }

func (d *DuckDuckGoAdapter) Info() Info {
	return Info{
		Name:             NameDuckDuckGo,
		Description:      "DuckDuckGo instant answers",
		EngagementFields: nil,
		Notes:            "instant answers only, not full search results",
	}
}

func (d *DuckDuckGoAdapter) Fetch(ctx context.Context, query string, limit int) ([]models.Record, error) {
	answerURL := fmt.Sprintf("%s/?q=%s&format=json&no_html=1",
		d.baseURL, url.QueryEscape(query))

	resp, err := d.client.R().SetContext(ctx).Get(answerURL)
	if err != nil {
		return nil, upstreamErr(NameDuckDuckGo, "request failed", err)
	}
	if resp.StatusCode() != 200 {
		return nil, statusErr(NameDuckDuckGo, resp.StatusCode())
	}

	var parsed ddgResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, upstreamErr(NameDuckDuckGo, "JSON parse error", err)
	}

	records := make([]models.Record, 0, 1+ddgMaxTopics)
	if parsed.Abstract != "" {
		title := parsed.Heading
		if title == "" {
			title = query
		}
		records = append(records, models.Record{
			ID:             "ddg_abstract",
			Source:         NameDuckDuckGo,
			Title:          title,
			URL:            parsed.AbstractURL,
			Snippet:        parsed.Abstract,
			DateConfidence: models.ConfidenceLow,
			Relevance:      0.5,
		})
	}

	var topics []ddgTopic
	// Grouped sub-topic objects have no Text field and decode to zero values.
	_ = json.Unmarshal(parsed.RelatedTopics, &topics)
	taken := 0
	for _, topic := range topics {
		if taken >= ddgMaxTopics || len(records) >= limit {
			break
		}
		if topic.Text == "" {
			continue
		}
		records = append(records, models.Record{
			ID:             fmt.Sprintf("ddg_topic_%d", len(records)),
			Source:         NameDuckDuckGo,
			Title:          truncate(topic.Text, 100),
			URL:            topic.FirstURL,
			Snippet:        topic.Text,
			DateConfidence: models.ConfidenceLow,
			Relevance:      0.4,
		})
		taken++
	}

	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (d *DuckDuckGoAdapter) Probe(ctx context.Context) error {
	_, err := d.Fetch(ctx, "go", 1)
	return err
}
