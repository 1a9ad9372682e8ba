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

// StackOverflowAdapter fetches questions from the Stack Exchange search API.
type StackOverflowAdapter struct {
	client  *resty.Client
	baseURL string
}

type soSearchResponse struct {
	Items []soQuestion `json:"items"`
}

type soQuestion struct {
	QuestionID   int64    `json:"question_id"`
	Title        string   `json:"title"`
	Link         string   `json:"link"`
	Tags         []string `json:"tags"`
	CreationDate int64    `json:"creation_date"`
	Score        *int     `json:"score"`
	AnswerCount  *int     `json:"answer_count"`
	ViewCount    *int     `json:"view_count"`
	IsAnswered   *bool    `json:"is_answered"`
}

// NewStackOverflow creates the Stack Overflow adapter.
func NewStackOverflow(cfg *config.Config) *StackOverflowAdapter {
	return &StackOverflowAdapter{
		client:  newClient(cfg.UserAgent, cfg.Timeout),
		baseURL: "https://api.stackexchange.com/2.3",
	}
}

func (s *StackOverflowAdapter) Name() string { return NameStackOverflow }

func (s *StackOverflowAdapter) Enabled() bool { return true } // anonymous quota is enough

func (s *StackOverflowAdapter) Info() Info {
	return Info{
		Name:             NameStackOverflow,
		Description:      "Stack Overflow questions via the Stack Exchange API",
		EngagementFields: []string{"votes", "answer_count", "view_count", "is_answered"},
	}
}

func (s *StackOverflowAdapter) Fetch(ctx context.Context, query string, limit int) ([]models.Record, error) {
	searchURL := fmt.Sprintf("%s/search?order=desc&sort=relevance&intitle=%s&site=stackoverflow&pagesize=%d",
		s.baseURL, url.QueryEscape(query), limit)

	resp, err := s.client.R().SetContext(ctx).Get(searchURL)
	if err != nil {
		return nil, upstreamErr(NameStackOverflow, "request failed", err)
	}
	if resp.StatusCode() != 200 {
		return nil, statusErr(NameStackOverflow, resp.StatusCode())
	}

	var parsed soSearchResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, upstreamErr(NameStackOverflow, "JSON parse error", err)
	}

	records := make([]models.Record, 0, limit)
	for _, q := range parsed.Items {
		if len(records) >= limit {
			break
		}

		day := dates.TimestampToDay(q.CreationDate)
		records = append(records, models.Record{
			ID:             fmt.Sprintf("%d", q.QuestionID),
			Source:         NameStackOverflow,
			Title:          q.Title,
			URL:            q.Link,
			Tags:           q.Tags,
			Date:           day,
			DateConfidence: dates.Confidence(day, q.Link),
			Relevance:      0.7,
			Engagement: &models.Engagement{
				Votes:       q.Score,
				AnswerCount: q.AnswerCount,
				ViewCount:   q.ViewCount,
				IsAnswered:  q.IsAnswered,
			},
		})
	}

	return records, nil
}

func (s *StackOverflowAdapter) Probe(ctx context.Context) error {
	_, err := s.Fetch(ctx, "go", 1)
	return err
}
