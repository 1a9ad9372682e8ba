// Package scoring ranks normalized records with the tiered, query-type-aware
// formula. The engine is pure: no I/O, deterministic for a given input and
// config, and it never mutates the records it reads.
package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/scouthq/scout/internal/dates"
	"github.com/scouthq/scout/internal/models"
	"github.com/scouthq/scout/internal/sources"
)

// Score computes one ScoreEntry per record and returns them ordered by
// descending score. Ties break on higher raw engagement, then more recent
// date, then the records' insertion order (stable, never map iteration).
func Score(records []models.Record, queryType QueryType, cfg Config) []models.ScoreEntry {
	if len(records) == 0 {
		return nil
	}

	now := cfg.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	qp, ok := cfg.QueryTypes[queryType]
	if !ok {
		qp = cfg.QueryTypes[QueryGeneral]
	}
	maxDays := qp.RecencyWindowDays
	if maxDays <= 0 {
		maxDays = 365
	}

	raw := rawEngagements(records)
	normalized := normalizePerSource(records, raw)

	type scored struct {
		entry models.ScoreEntry
		raw   float64 // -1 when engagement is unknown
		date  string
	}
	out := make([]scored, len(records))

	for i, rec := range records {
		tier := cfg.SourceTiers[rec.Source]
		if tier == 0 {
			tier = 3
		}
		tp := cfg.Tiers[tier]

		relScore := int(rec.Relevance * 100)

		// Low-confidence dates stay neutral on recency: the item is neither
		// punished as ancient nor rewarded as fresh. The confidence
		// adjustment below applies independently.
		var recScore int
		if rec.Date == "" || rec.DateConfidence == models.ConfidenceLow {
			recScore = int(cfg.NeutralRecency)
		} else {
			recScore = dates.RecencyScore(rec.Date, maxDays, now)
		}

		engScore := int(cfg.DefaultEngagement)
		if normalized[i] != nil {
			engScore = int(*normalized[i])
		} else if tp.Weights.Engagement == 0 {
			engScore = 0
		}

		overall := tp.Weights.Relevance*float64(relScore) +
			tp.Weights.Recency*float64(recScore) +
			tp.Weights.Engagement*float64(engScore)

		if raw[i] == nil && tp.Weights.Engagement > 0 {
			overall -= cfg.UnknownEngagementPenalty
		}
		overall -= tp.Penalty

		switch rec.DateConfidence {
		case models.ConfidenceHigh:
			overall += cfg.HighConfidenceBonus
		case models.ConfidenceLow:
			overall -= cfg.LowConfidencePenalty
		}

		if boost, ok := qp.SourceBoosts[rec.Source]; ok && boost > 0 {
			overall *= boost
		}

		overall = math.Max(0, math.Min(100, overall))

		rawVal := -1.0
		if raw[i] != nil {
			rawVal = *raw[i]
		}
		out[i] = scored{
			entry: models.ScoreEntry{
				Ref:   models.RecordRef{Source: rec.Source, ID: rec.ID},
				Score: overall,
				Tier:  tier,
				Components: models.SubScores{
					Relevance:  relScore,
					Recency:    recScore,
					Engagement: engScore,
				},
			},
			raw:  rawVal,
			date: rec.Date,
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].entry.Score != out[j].entry.Score {
			return out[i].entry.Score > out[j].entry.Score
		}
		if out[i].raw != out[j].raw {
			return out[i].raw > out[j].raw
		}
		// YYYY-MM-DD compares lexicographically; empty dates sort last.
		if out[i].date != out[j].date {
			return out[i].date > out[j].date
		}
		return false // stable: keep insertion order
	})

	entries := make([]models.ScoreEntry, len(out))
	for i, s := range out {
		entries[i] = s.entry
	}
	return entries
}

func log1pSafe(v int) float64 {
	if v < 0 {
		return 0
	}
	return math.Log1p(float64(v))
}

// rawEngagement combines a record's available metrics into one raw value
// using the per-source log1p formulas. Returns nil when the record has no
// usable engagement signal at all.
func rawEngagement(rec models.Record) *float64 {
	e := rec.Engagement
	if e.IsEmpty() {
		return nil
	}

	var v float64
	switch rec.Source {
	case sources.NameReddit:
		if e.Score == nil && e.NumComments == nil {
			return nil
		}
		v = 0.55*log1pSafe(e.GetScore()) +
			0.40*log1pSafe(e.GetNumComments()) +
			0.05*(e.GetUpvoteRatio()*10)
	case sources.NameHackerNews:
		if e.Points == nil && e.NumComments == nil {
			return nil
		}
		v = 0.60*log1pSafe(e.GetPoints()) + 0.40*log1pSafe(e.GetNumComments())
	case sources.NameStackOverflow:
		if e.Votes == nil && e.AnswerCount == nil {
			return nil
		}
		accepted := 0.0
		if e.GetIsAnswered() {
			accepted = 10
		}
		v = 0.40*log1pSafe(e.GetVotes()) +
			0.30*log1pSafe(e.GetAnswerCount()) +
			0.20*log1pSafe(e.GetViewCount()/100) +
			0.10*accepted
	default:
		switch {
		case e.Points != nil:
			v = log1pSafe(e.GetPoints())
		case e.Votes != nil:
			v = log1pSafe(e.GetVotes())
		default:
			return nil
		}
	}
	return &v
}

func rawEngagements(records []models.Record) []*float64 {
	raw := make([]*float64, len(records))
	for i, rec := range records {
		raw[i] = rawEngagement(rec)
	}
	return raw
}

// normalizePerSource min-max scales raw engagement to 0..100 within each
// source group, since raw metrics are only comparable inside one source.
// A group with no spread maps to 50; nil values stay nil.
func normalizePerSource(records []models.Record, raw []*float64) []*float64 {
	groups := make(map[string][]int)
	for i, rec := range records {
		groups[rec.Source] = append(groups[rec.Source], i)
	}

	normalized := make([]*float64, len(records))
	for _, idxs := range groups {
		minVal := math.Inf(1)
		maxVal := math.Inf(-1)
		any := false
		for _, i := range idxs {
			if raw[i] == nil {
				continue
			}
			any = true
			minVal = math.Min(minVal, *raw[i])
			maxVal = math.Max(maxVal, *raw[i])
		}
		if !any {
			continue
		}
		span := maxVal - minVal
		for _, i := range idxs {
			if raw[i] == nil {
				continue
			}
			v := 50.0
			if span > 0 {
				v = (*raw[i] - minVal) / span * 100
			}
			normalized[i] = &v
		}
	}
	return normalized
}

// Collect flattens the successful outcomes of an envelope into one record
// slice in a deterministic order: sources in the requested order, items in
// upstream order within each source.
func Collect(envelope *models.ResponseEnvelope) []models.Record {
	var records []models.Record
	for _, name := range envelope.Meta.SourcesRequested {
		outcome, ok := envelope.Results[name]
		if !ok || !outcome.Success {
			continue
		}
		records = append(records, outcome.Items...)
	}
	return records
}
