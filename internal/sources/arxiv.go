package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
	"github.com/scouthq/scout/internal/config"
	"github.com/scouthq/scout/internal/dates"
	"github.com/scouthq/scout/internal/models"
)

const arxivSnippetMax = 500

// ArxivAdapter fetches papers from the arXiv export API, which serves an
// Atom feed. Academic papers carry no engagement signal (Tier 3).
type ArxivAdapter struct {
	client  *resty.Client
	parser  *gofeed.Parser
	baseURL string
}

// NewArxiv creates the arXiv adapter.
func NewArxiv(cfg *config.Config) *ArxivAdapter {
	return &ArxivAdapter{
		client:  newClient(cfg.UserAgent, cfg.Timeout),
		parser:  gofeed.NewParser(),
		baseURL: "http://export.arxiv.org",
	}
}

func (a *ArxivAdapter) Name() string { return NameArxiv }

func (a *ArxivAdapter) Enabled() bool { return true }

func (a *ArxivAdapter) Info() Info {
	return Info{
		Name:             NameArxiv,
		Description:      "arXiv papers via the export API (Atom)",
		EngagementFields: nil,
		Notes:            "academic index, no engagement signal",
	}
}

func (a *ArxivAdapter) Fetch(ctx context.Context, query string, limit int) ([]models.Record, error) {
	queryURL := fmt.Sprintf("%s/api/query?search_query=all:%s&max_results=%d",
		a.baseURL, url.QueryEscape(query), limit)

	resp, err := a.client.R().SetContext(ctx).Get(queryURL)
	if err != nil {
		return nil, upstreamErr(NameArxiv, "request failed", err)
	}
	if resp.StatusCode() != 200 {
		return nil, statusErr(NameArxiv, resp.StatusCode())
	}

	feed, err := a.parser.ParseString(string(resp.Body()))
	if err != nil {
		return nil, upstreamErr(NameArxiv, "feed parse error", err)
	}

	records := make([]models.Record, 0, limit)
	for _, item := range feed.Items {
		if len(records) >= limit {
			break
		}

		day := ""
		if item.PublishedParsed != nil {
			day = item.PublishedParsed.UTC().Format("2006-01-02")
		}

		snippet := truncate(strings.TrimSpace(item.Description), arxivSnippetMax)

		records = append(records, models.Record{
			ID:             item.GUID,
			Source:         NameArxiv,
			Title:          strings.TrimSpace(item.Title),
			URL:            item.Link,
			Author:         joinAuthors(item.Authors, 3),
			Snippet:        snippet,
			Date:           day,
			DateConfidence: dates.Confidence(day, item.Link),
			Relevance:      0.7,
		})
	}

	return records, nil
}

func joinAuthors(authors []*gofeed.Person, max int) string {
	names := make([]string, 0, max)
	for _, author := range authors {
		if author == nil || author.Name == "" {
			continue
		}
		names = append(names, author.Name)
		if len(names) >= max {
			break
		}
	}
	return strings.Join(names, ", ")
}

func (a *ArxivAdapter) Probe(ctx context.Context) error {
	_, err := a.Fetch(ctx, "go", 1)
	return err
}
