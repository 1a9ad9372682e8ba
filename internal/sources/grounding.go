package sources

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/scouthq/scout/internal/config"
	"github.com/scouthq/scout/internal/models"
)

// GroundingAdapter fetches a synthesized answer with citations from the
// Brave AI Grounding endpoint. Unlike the other adapters it does not return
// a ranked list: the first record is the answer itself and each citation
// becomes one record without engagement data. The adapter is gated on
// BRAVE_API_KEY, resolved once at startup.
type GroundingAdapter struct {
	client   *resty.Client
	apiKey   string
	endpoint string
}

const groundingSnippetMax = 100

var (
	citationRe = regexp.MustCompile(`(?s)<citation>(.*?)</citation>`)
	usageRe    = regexp.MustCompile(`(?s)<usage>(.*?)</usage>`)
	enumRe     = regexp.MustCompile(`</?enum_item>`)
)

type groundingCitation struct {
	Number  int    `json:"number"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// NewGrounding creates the Brave grounding adapter.
func NewGrounding(cfg *config.Config) *GroundingAdapter {
	return &GroundingAdapter{
		client:   newClient(cfg.UserAgent, cfg.Timeout),
		apiKey:   cfg.BraveAPIKey,
		endpoint: "https://api.search.brave.com/res/v1/chat/completions",
	}
}

func (g *GroundingAdapter) Name() string { return NameBrave }

func (g *GroundingAdapter) Enabled() bool { return g.apiKey != "" }

func (g *GroundingAdapter) Info() Info {
	return Info{
		Name:             NameBrave,
		Description:      "Brave AI Grounding: synthesized answer with citations",
		EngagementFields: nil,
		Notes:            "optional; requires BRAVE_API_KEY",
	}
}

func (g *GroundingAdapter) Fetch(ctx context.Context, query string, limit int) ([]models.Record, error) {
	if !g.Enabled() {
		return nil, &ConfigurationError{Source: NameBrave, Reason: "missing_brave_api_key"}
	}

	payload := map[string]any{
		"model":  "brave",
		"stream": true,
		"messages": []map[string]string{
			{"role": "user", "content": query},
		},
		"enable_citations": true,
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Subscription-Token", g.apiKey).
		SetBody(payload).
		SetDoNotParseResponse(true).
		Post(g.endpoint)
	if err != nil {
		return nil, upstreamErr(NameBrave, "request failed", err)
	}
	body := resp.RawBody()
	defer body.Close()
	if resp.StatusCode() != 200 {
		return nil, statusErr(NameBrave, resp.StatusCode())
	}

	var parts []string
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if data, ok := strings.CutPrefix(line, "data:"); ok {
			data = strings.TrimSpace(data)
			if data == "[DONE]" {
				break
			}
			if content := streamDelta(data); content != "" {
				parts = append(parts, content)
			}
			continue
		}
		// Non-stream fallback: a plain chat-completion object per line.
		if content := messageContent(line); content != "" {
			parts = append(parts, content)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, upstreamErr(NameBrave, "stream read error", err)
	}

	return g.buildRecords(query, strings.Join(parts, "")), nil
}

func streamDelta(data string) string {
	var chunk struct {
		Choices []struct {
			Delta struct {
				Content string `json:"content"`
			} `json:"delta"`
		} `json:"choices"`
	}
	if err := json.Unmarshal([]byte(data), &chunk); err != nil || len(chunk.Choices) == 0 {
		return ""
	}
	return chunk.Choices[0].Delta.Content
}

func messageContent(line string) string {
	var full struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal([]byte(line), &full); err != nil || len(full.Choices) == 0 {
		return ""
	}
	return full.Choices[0].Message.Content
}

// buildRecords turns the raw grounded text into Records: the cleaned answer
// first, then one record per parsed citation.
func (g *GroundingAdapter) buildRecords(query, text string) []models.Record {
	var citations []groundingCitation
	for _, match := range citationRe.FindAllStringSubmatch(text, -1) {
		var c groundingCitation
		if err := json.Unmarshal([]byte(match[1]), &c); err != nil {
			continue
		}
		citations = append(citations, c)
	}

	cleaned := citationRe.ReplaceAllString(text, "")
	cleaned = usageRe.ReplaceAllString(cleaned, "")
	cleaned = enumRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	records := []models.Record{{
		ID:             "brave_answer",
		Source:         NameBrave,
		Title:          query,
		Snippet:        cleaned,
		DateConfidence: models.ConfidenceLow,
		Relevance:      0.5,
	}}

	for i, c := range citations {
		title := truncate(c.Snippet, groundingSnippetMax)
		records = append(records, models.Record{
			ID:             fmt.Sprintf("brave_citation_%d", i+1),
			Source:         NameBrave,
			Title:          title,
			URL:            c.URL,
			Snippet:        c.Snippet,
			DateConfidence: models.ConfidenceLow,
			Relevance:      0.5,
		})
	}

	return records
}

func (g *GroundingAdapter) Probe(ctx context.Context) error {
	if !g.Enabled() {
		return &ConfigurationError{Source: NameBrave, Reason: "BRAVE_API_KEY not set"}
	}
	_, err := g.Fetch(ctx, "go", 1)
	return err
}
