package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/scouthq/scout/internal/config"
	"github.com/scouthq/scout/internal/dates"
	"github.com/scouthq/scout/internal/models"
)

// DevtoAdapter fetches articles from the Dev.to API. Dev.to search is
// tag-based, so the query is slugified into a tag. Relevance prior is lower
// than for free-text sources because tag matching is coarser.
type DevtoAdapter struct {
	client  *resty.Client
	baseURL string
}

type devtoArticle struct {
	ID                     int64  `json:"id"`
	Title                  string `json:"title"`
	URL                    string `json:"url"`
	Description            string `json:"description"`
	PublishedAt            string `json:"published_at"`
	PositiveReactionsCount *int   `json:"positive_reactions_count"`
	CommentsCount          *int   `json:"comments_count"`
	User                   struct {
		Username string `json:"username"`
	} `json:"user"`
}

// NewDevto creates the Dev.to adapter.
func NewDevto(cfg *config.Config) *DevtoAdapter {
	return &DevtoAdapter{
		client:  newClient(cfg.UserAgent, cfg.Timeout),
		baseURL: "https://dev.to",
	}
}

func (d *DevtoAdapter) Name() string { return NameDevto }

func (d *DevtoAdapter) Enabled() bool { return true }

func (d *DevtoAdapter) Info() Info {
	return Info{
		Name:             NameDevto,
		Description:      "Dev.to articles via the tag API",
		EngagementFields: []string{"points", "num_comments"},
		Notes:            "tag-based lookup; the query is slugified to a tag",
	}
}

func (d *DevtoAdapter) Fetch(ctx context.Context, query string, limit int) ([]models.Record, error) {
	tag := slugifyTag(query)
	articlesURL := fmt.Sprintf("%s/api/articles?tag=%s&per_page=%d",
		d.baseURL, url.QueryEscape(tag), limit)

	resp, err := d.client.R().SetContext(ctx).Get(articlesURL)
	if err != nil {
		return nil, upstreamErr(NameDevto, "request failed", err)
	}
	if resp.StatusCode() != 200 {
		return nil, statusErr(NameDevto, resp.StatusCode())
	}

	var articles []devtoArticle
	if err := json.Unmarshal(resp.Body(), &articles); err != nil {
		return nil, upstreamErr(NameDevto, "JSON parse error", err)
	}

	records := make([]models.Record, 0, limit)
	for _, article := range articles {
		if len(records) >= limit {
			break
		}

		day := dates.ToDay(article.PublishedAt)
		records = append(records, models.Record{
			ID:             fmt.Sprintf("%d", article.ID),
			Source:         NameDevto,
			Title:          article.Title,
			URL:            article.URL,
			Author:         article.User.Username,
			Snippet:        article.Description,
			Date:           day,
			DateConfidence: dates.Confidence(day, article.URL),
			Relevance:      0.6,
			Engagement: &models.Engagement{
				Points:      article.PositiveReactionsCount,
				NumComments: article.CommentsCount,
			},
		})
	}

	return records, nil
}

// slugifyTag turns a free-text query into a Dev.to tag: lowercase with
// spaces and hyphens removed.
func slugifyTag(query string) string {
	tag := strings.ToLower(query)
	tag = strings.ReplaceAll(tag, " ", "")
	tag = strings.ReplaceAll(tag, "-", "")
	return tag
}

func (d *DevtoAdapter) Probe(ctx context.Context) error {
	_, err := d.Fetch(ctx, "go", 1)
	return err
}
