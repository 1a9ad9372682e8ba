package fetcher

import (
	"time"

	"github.com/scouthq/scout/internal/models"
)

// assemble folds per-source outcomes into the response envelope. Every
// requested source appears in both results and source_status, failures
// included, so callers always see the full picture of what they asked for.
func assemble(query, depth string, requested []string, outcomes []models.SourceOutcome) *models.ResponseEnvelope {
	envelope := &models.ResponseEnvelope{
		Meta: models.Meta{
			Query:            query,
			FetchedAt:        time.Now().UTC(),
			SourcesRequested: requested,
			Depth:            depth,
		},
		Results:      make(map[string]models.SourceOutcome, len(requested)),
		SourceStatus: make(map[string]models.SourceStatus, len(requested)),
	}

	for _, outcome := range outcomes {
		envelope.Results[outcome.SourceName] = outcome
		envelope.SourceStatus[outcome.SourceName] = models.SourceStatus{
			Success:   outcome.Success,
			ItemCount: outcome.ItemCount,
			Notes:     outcome.ErrorReason,
		}
	}

	return envelope
}
