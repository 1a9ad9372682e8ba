package models

import "time"

// DateConfidence describes how much a record's date can be trusted.
type DateConfidence string

const (
	ConfidenceHigh   DateConfidence = "high"   // explicit API timestamp
	ConfidenceMedium DateConfidence = "medium" // derived (e.g. from the URL path)
	ConfidenceLow    DateConfidence = "low"    // guessed or absent
)

// Engagement holds per-source engagement metrics. Every field is optional:
// upstreams expose different subsets and absent metrics are never fabricated.
// Scoring reads through the accessor helpers, which apply the defaults
// (numeric -> 0, is_answered -> false).
type Engagement struct {
	// Hacker News, Lobsters, Dev.to
	Points      *int `json:"points,omitempty"`
	NumComments *int `json:"num_comments,omitempty"`

	// Stack Overflow
	Votes       *int  `json:"votes,omitempty"`
	AnswerCount *int  `json:"answer_count,omitempty"`
	ViewCount   *int  `json:"view_count,omitempty"`
	IsAnswered  *bool `json:"is_answered,omitempty"`

	// Reddit enrichment
	Score       *int     `json:"score,omitempty"`
	UpvoteRatio *float64 `json:"upvote_ratio,omitempty"`
}

// IsEmpty reports whether no metric is set at all.
func (e *Engagement) IsEmpty() bool {
	if e == nil {
		return true
	}
	return e.Points == nil && e.NumComments == nil && e.Votes == nil &&
		e.AnswerCount == nil && e.ViewCount == nil && e.IsAnswered == nil &&
		e.Score == nil && e.UpvoteRatio == nil
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func (e *Engagement) GetPoints() int      { return intOrZero(e.get().Points) }
func (e *Engagement) GetNumComments() int { return intOrZero(e.get().NumComments) }
func (e *Engagement) GetVotes() int       { return intOrZero(e.get().Votes) }
func (e *Engagement) GetAnswerCount() int { return intOrZero(e.get().AnswerCount) }
func (e *Engagement) GetViewCount() int   { return intOrZero(e.get().ViewCount) }
func (e *Engagement) GetScore() int       { return intOrZero(e.get().Score) }

func (e *Engagement) GetIsAnswered() bool {
	g := e.get()
	return g.IsAnswered != nil && *g.IsAnswered
}

func (e *Engagement) GetUpvoteRatio() float64 {
	g := e.get()
	if g.UpvoteRatio == nil {
		return 0.5
	}
	return *g.UpvoteRatio
}

func (e *Engagement) get() *Engagement {
	if e == nil {
		return &Engagement{}
	}
	return e
}

// Comment is a top comment or answer excerpt attached by enrichment.
type Comment struct {
	Score   int    `json:"score"`
	Author  string `json:"author"`
	Excerpt string `json:"excerpt"`
	URL     string `json:"url,omitempty"`
	Date    string `json:"date,omitempty"`
}

// Record is one normalized item from one source. A Record is immutable once
// its adapter produces it; scoring emits separate ScoreEntry values that
// reference the Record by source+id.
type Record struct {
	ID             string         `json:"id"`
	Source         string         `json:"source"`
	Title          string         `json:"title"`
	URL            string         `json:"url"`
	Author         string         `json:"author,omitempty"`
	Snippet        string         `json:"snippet,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	DiscussionURL  string         `json:"discussion_url,omitempty"`
	Date           string         `json:"date,omitempty"` // YYYY-MM-DD
	DateConfidence DateConfidence `json:"date_confidence"`
	Relevance      float64        `json:"relevance"`
	Engagement     *Engagement    `json:"engagement,omitempty"`
	TopComments    []Comment      `json:"top_comments,omitempty"`
}

// SourceOutcome is the per-source fetch result. Either the whole adapter
// call succeeded with a full item list, or it failed atomically.
type SourceOutcome struct {
	SourceName  string   `json:"source_name"`
	Success     bool     `json:"success"`
	ItemCount   int      `json:"item_count"`
	Items       []Record `json:"items"`
	ErrorReason string   `json:"error_reason,omitempty"`
	DurationMS  int64    `json:"duration_ms,omitempty"`
}

// Meta describes one fetch invocation.
type Meta struct {
	Query            string    `json:"query"`
	FetchedAt        time.Time `json:"fetched_at"`
	SourcesRequested []string  `json:"sources_requested"`
	Depth            string    `json:"depth,omitempty"`
}

// SourceStatus is the flattened success/failure entry for quick inspection.
type SourceStatus struct {
	Success   bool   `json:"success"`
	ItemCount int    `json:"item_count"`
	Notes     string `json:"notes,omitempty"`
}

// ResponseEnvelope is the externally visible result of one invocation.
// Constructed once, immutable after return; no state survives across calls.
type ResponseEnvelope struct {
	Meta         Meta                     `json:"meta"`
	Results      map[string]SourceOutcome `json:"results"`
	SourceStatus map[string]SourceStatus  `json:"source_status"`
}

// RecordRef identifies a Record across sources.
type RecordRef struct {
	Source string `json:"source"`
	ID     string `json:"id"`
}

// SubScores keeps the scoring components for explainability and testing.
type SubScores struct {
	Relevance  int `json:"relevance"`
	Recency    int `json:"recency"`
	Engagement int `json:"engagement"`
}

// ScoreEntry is the scoring engine output for one Record. Ephemeral:
// recomputed on every pass, never cached.
type ScoreEntry struct {
	Ref        RecordRef `json:"record_ref"`
	Score      float64   `json:"score"`
	Tier       int       `json:"tier"`
	Components SubScores `json:"components"`
}

// Int returns a pointer to v, for building Engagement literals.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
