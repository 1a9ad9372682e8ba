// Package dates normalizes the many date shapes upstream APIs return into
// plain YYYY-MM-DD strings plus a confidence tag, and provides the recency
// curve used by scoring.
package dates

import (
	"regexp"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"github.com/scouthq/scout/internal/models"
)

const dayLayout = "2006-01-02"

// Parse parses a date string in any of the formats upstreams use
// (ISO 8601 variants, RFC dates, unix timestamps). Returns the zero time
// when the string is empty or unparseable.
func Parse(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	// Unix timestamps arrive as bare numbers from Reddit and HN payloads.
	if ts, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Unix(int64(ts), 0).UTC()
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// ToDay formats a date string from an upstream as YYYY-MM-DD, or "" when it
// cannot be parsed.
func ToDay(s string) string {
	t := Parse(s)
	if t.IsZero() {
		return ""
	}
	return t.Format(dayLayout)
}

// TimestampToDay converts a unix timestamp to YYYY-MM-DD. Zero and negative
// timestamps are treated as unknown.
func TimestampToDay(ts int64) string {
	if ts <= 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format(dayLayout)
}

var urlDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`/(\d{4})/(\d{2})/(\d{2})/`), // /2024/01/15/
	regexp.MustCompile(`/(\d{4})-(\d{2})-(\d{2})`),  // /2024-01-15
}

// FromURL tries to extract a publish date from a URL path. Returns "" when
// no plausible date is found.
func FromURL(url string) string {
	for _, re := range urlDatePatterns {
		m := re.FindStringSubmatch(url)
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if year >= 2010 && year <= time.Now().UTC().Year()+1 {
			return d.Format(dayLayout)
		}
	}
	return ""
}

// Confidence determines the confidence tag for a date.
//
// Preference order: explicit API timestamp -> high, URL-derived -> medium,
// unavailable or future-dated -> low.
func Confidence(day string, url string) models.DateConfidence {
	if day == "" {
		if url != "" && FromURL(url) != "" {
			return models.ConfidenceMedium
		}
		return models.ConfidenceLow
	}

	d, err := time.Parse(dayLayout, day)
	if err != nil {
		return models.ConfidenceLow
	}
	if d.After(time.Now().UTC()) {
		return models.ConfidenceLow
	}
	return models.ConfidenceHigh
}

// DaysAgo returns the age of a YYYY-MM-DD date in days, or -1 when the date
// is missing or invalid.
func DaysAgo(day string, now time.Time) int {
	if day == "" {
		return -1
	}
	d, err := time.Parse(dayLayout, day)
	if err != nil {
		return -1
	}
	age := int(now.UTC().Sub(d).Hours() / 24)
	if age < 0 {
		return 0 // future date, treat as today
	}
	return age
}

// RecencyScore computes a 0-100 recency sub-score with linear decay:
// today = 100, maxDays or older = 0. Unknown dates return 0; callers that
// must stay neutral on unknown dates handle that before calling.
func RecencyScore(day string, maxDays int, now time.Time) int {
	age := DaysAgo(day, now)
	if age < 0 {
		return 0
	}
	if age >= maxDays {
		return 0
	}
	return int(100 * (1 - float64(age)/float64(maxDays)))
}
