// Package enrich fetches real engagement data for a single Reddit thread.
// This is the out-of-band path: it takes a post URL rather than a query and
// returns one enriched record instead of joining the multi-source fan-out.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/scouthq/scout/internal/config"
	"github.com/scouthq/scout/internal/dates"
	"github.com/scouthq/scout/internal/models"
	"github.com/scouthq/scout/internal/sources"
	"github.com/sirupsen/logrus"
)

const (
	maxComments    = 5
	excerptMax     = 500
	browserAgent   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultPostURL = "https://www.reddit.com"
)

var redditURLRe = regexp.MustCompile(`(?:reddit\.com)?/r/([^/]+)/comments/([^/?#]+)`)

// ThreadRef identifies a Reddit thread extracted from a URL.
type ThreadRef struct {
	Subreddit string
	PostID    string
}

// Service fetches Reddit thread JSON. It rotates to browser-like headers and
// old.reddit.com when the default client gets blocked.
type Service struct {
	client    *resty.Client
	userAgent string
	baseURL   string
}

// NewService creates the enrichment service.
func NewService(cfg *config.Config) *Service {
	return &Service{
		client:    resty.New().SetTimeout(cfg.Timeout).SetHeader("Accept", "application/json"),
		userAgent: cfg.UserAgent,
		baseURL:   defaultPostURL,
	}
}

// ParseURL extracts the subreddit and post id from a Reddit URL. Supported
// shapes include full www/old reddit URLs and bare /r/.../comments/... paths.
func ParseURL(url string) (ThreadRef, bool) {
	m := redditURLRe.FindStringSubmatch(url)
	if m == nil {
		return ThreadRef{}, false
	}
	return ThreadRef{Subreddit: m[1], PostID: m[2]}, true
}

// Enrich fetches the thread and returns one Record with real engagement
// (score, comment count, upvote ratio) and the top comment excerpts.
func (s *Service) Enrich(ctx context.Context, url string) (*models.Record, error) {
	ref, ok := ParseURL(url)
	if !ok {
		return nil, fmt.Errorf("not a reddit thread URL: %s", url)
	}

	jsonURL := fmt.Sprintf("%s/r/%s/comments/%s.json?limit=%d",
		s.baseURL, ref.Subreddit, ref.PostID, maxComments)

	body, err := s.get(ctx, jsonURL)
	if err != nil {
		return nil, err
	}

	record, err := parseThread(body)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// get requests the thread JSON, retrying a 403 first with browser headers
// and then against old.reddit.com.
func (s *Service) get(ctx context.Context, url string) ([]byte, error) {
	agents := []string{s.userAgent, browserAgent}
	urls := []string{url, strings.Replace(url, "www.reddit.com", "old.reddit.com", 1)}

	var lastStatus int
	for _, u := range urls {
		for _, agent := range agents {
			resp, err := s.client.R().
				SetContext(ctx).
				SetHeader("User-Agent", agent).
				Get(u)
			if err != nil {
				return nil, &sources.UpstreamError{Source: sources.NameReddit, Reason: "request failed", Err: err}
			}
			if resp.StatusCode() == 200 {
				return resp.Body(), nil
			}
			lastStatus = resp.StatusCode()
			if resp.StatusCode() != 403 {
				return nil, &sources.UpstreamError{Source: sources.NameReddit, Reason: fmt.Sprintf("HTTP %d", lastStatus)}
			}
			logrus.Debugf("reddit returned 403 for %s, rotating headers", u)
		}
	}
	return nil, &sources.UpstreamError{Source: sources.NameReddit, Reason: fmt.Sprintf("HTTP %d", lastStatus)}
}

// Reddit thread JSON: a two-element array, post listing then comment listing.
type redditListing struct {
	Data struct {
		Children []struct {
			Kind string          `json:"kind"`
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	Selftext    string  `json:"selftext"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int     `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	NumComments int     `json:"num_comments"`
}

type redditComment struct {
	Body       string  `json:"body"`
	Author     string  `json:"author"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
}

func parseThread(body []byte) (*models.Record, error) {
	var listings []redditListing
	if err := json.Unmarshal(body, &listings); err != nil {
		return nil, &sources.UpstreamError{Source: sources.NameReddit, Reason: "JSON parse error", Err: err}
	}
	if len(listings) < 2 || len(listings[0].Data.Children) == 0 {
		return nil, &sources.UpstreamError{Source: sources.NameReddit, Reason: "unexpected thread payload"}
	}

	var post redditPost
	if err := json.Unmarshal(listings[0].Data.Children[0].Data, &post); err != nil {
		return nil, &sources.UpstreamError{Source: sources.NameReddit, Reason: "JSON parse error", Err: err}
	}

	var comments []models.Comment
	for _, child := range listings[1].Data.Children {
		if child.Kind != "t1" { // t1 = comment
			continue
		}
		var c redditComment
		if err := json.Unmarshal(child.Data, &c); err != nil || c.Body == "" {
			continue
		}
		excerpt := c.Body
		if runes := []rune(excerpt); len(runes) > excerptMax {
			// Cut on a rune boundary so multi-byte characters survive.
			excerpt = string(runes[:excerptMax-3]) + "..."
		}
		author := c.Author
		if author == "" {
			author = "[deleted]"
		}
		comments = append(comments, models.Comment{
			Score:   c.Score,
			Author:  author,
			Excerpt: excerpt,
			Date:    dates.TimestampToDay(int64(c.CreatedUTC)),
		})
		if len(comments) >= maxComments {
			break
		}
	}
	sort.SliceStable(comments, func(i, j int) bool { return comments[i].Score > comments[j].Score })

	day := dates.TimestampToDay(int64(post.CreatedUTC))
	confidence := models.ConfidenceLow
	if day != "" {
		confidence = models.ConfidenceHigh // timestamp straight from the API
	}
	ratio := post.UpvoteRatio
	if ratio == 0 {
		ratio = 0.5
	}

	record := &models.Record{
		ID:             post.ID,
		Source:         sources.NameReddit,
		Title:          post.Title,
		URL:            defaultPostURL + post.Permalink,
		Author:         post.Author,
		Snippet:        post.Selftext,
		Date:           day,
		DateConfidence: confidence,
		Relevance:      0.7,
		Engagement: &models.Engagement{
			Score:       models.Int(post.Score),
			NumComments: models.Int(post.NumComments),
			UpvoteRatio: models.Float(ratio),
		},
		TopComments: comments,
	}
	return record, nil
}

// Meta builds the single-record envelope metadata for the enrich command.
func Meta(url string) models.Meta {
	return models.Meta{
		Query:            url,
		FetchedAt:        time.Now().UTC(),
		SourcesRequested: []string{sources.NameReddit},
	}
}
