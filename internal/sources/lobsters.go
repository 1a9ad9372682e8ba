package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/scouthq/scout/internal/config"
	"github.com/scouthq/scout/internal/dates"
	"github.com/scouthq/scout/internal/models"
)

// LobstersAdapter fetches stories from the Lobsters hottest feed. Lobsters
// has no search endpoint, so matching against the query happens client-side
// on title and tags.
type LobstersAdapter struct {
	client  *resty.Client
	baseURL string
}

type lobstersStory struct {
	ShortID       string        `json:"short_id"`
	Title         string        `json:"title"`
	URL           string        `json:"url"`
	CreatedAt     string        `json:"created_at"`
	Score         *int          `json:"score"`
	CommentCount  *int          `json:"comment_count"`
	Tags          []string      `json:"tags"`
	SubmitterUser submitterUser `json:"submitter_user"`
}

// submitterUser tolerates both shapes the feed has used over time: a plain
// username string and an object with a username field.
type submitterUser struct {
	Username string
}

func (s *submitterUser) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		s.Username = name
		return nil
	}
	var obj struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		s.Username = obj.Username
	}
	return nil
}

// NewLobsters creates the Lobsters adapter.
func NewLobsters(cfg *config.Config) *LobstersAdapter {
	return &LobstersAdapter{
		client:  newClient(cfg.UserAgent, cfg.Timeout),
		baseURL: "https://lobste.rs",
	}
}

func (l *LobstersAdapter) Name() string { return NameLobsters }

func (l *LobstersAdapter) Enabled() bool { return true }

func (l *LobstersAdapter) Info() Info {
	return Info{
		Name:             NameLobsters,
		Description:      "Lobsters hottest stories, filtered client-side",
		EngagementFields: []string{"points", "num_comments"},
		Notes:            "no search API; matches query terms against title and tags",
	}
}

func (l *LobstersAdapter) Fetch(ctx context.Context, query string, limit int) ([]models.Record, error) {
	resp, err := l.client.R().SetContext(ctx).Get(l.baseURL + "/hottest.json")
	if err != nil {
		return nil, upstreamErr(NameLobsters, "request failed", err)
	}
	if resp.StatusCode() != 200 {
		return nil, statusErr(NameLobsters, resp.StatusCode())
	}

	var stories []lobstersStory
	if err := json.Unmarshal(resp.Body(), &stories); err != nil {
		return nil, upstreamErr(NameLobsters, "JSON parse error", err)
	}

	terms := strings.Fields(strings.ToLower(query))
	records := make([]models.Record, 0, limit)
	for _, story := range stories {
		if len(records) >= limit {
			break
		}
		if !matchesTerms(story, terms) {
			continue
		}

		day := dates.ToDay(story.CreatedAt)
		storyURL := story.URL
		if storyURL == "" {
			storyURL = fmt.Sprintf("%s/s/%s", l.baseURL, story.ShortID)
		}

		records = append(records, models.Record{
			ID:             story.ShortID,
			Source:         NameLobsters,
			Title:          story.Title,
			URL:            storyURL,
			Author:         story.SubmitterUser.Username,
			Tags:           story.Tags,
			Date:           day,
			DateConfidence: dates.Confidence(day, storyURL),
			Relevance:      0.7,
			Engagement: &models.Engagement{
				Points:      story.Score,
				NumComments: story.CommentCount,
			},
		})
	}

	return records, nil
}

func matchesTerms(story lobstersStory, terms []string) bool {
	title := strings.ToLower(story.Title)
	for _, term := range terms {
		if strings.Contains(title, term) {
			return true
		}
		for _, tag := range story.Tags {
			if strings.Contains(strings.ToLower(tag), term) {
				return true
			}
		}
	}
	return false
}

func (l *LobstersAdapter) Probe(ctx context.Context) error {
	resp, err := l.client.R().SetContext(ctx).Get(l.baseURL + "/hottest.json")
	if err != nil {
		return upstreamErr(NameLobsters, "request failed", err)
	}
	if resp.StatusCode() != 200 {
		return statusErr(NameLobsters, resp.StatusCode())
	}
	return nil
}
