package main

import (
	"context"

	"github.com/FACorreiaa/statement-extractor/internal/domain/categorization"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/service"
)

// categorizationAdapter adapts categorization.Service to the processor's
// CategorizationService interface.
type categorizationAdapter struct {
	svc *categorization.Service
}

func newCategorizationAdapter(svc *categorization.Service) service.CategorizationService {
	return &categorizationAdapter{svc: svc}
}

// CategorizeBatch implements service.CategorizationService
func (a *categorizationAdapter) CategorizeBatch(ctx context.Context, descriptions []string) ([]*service.CategorizationResult, error) {
	results, err := a.svc.CategorizeBatch(ctx, descriptions)
	if err != nil {
		return nil, err
	}

	out := make([]*service.CategorizationResult, len(results))
	for i, r := range results {
		out[i] = &service.CategorizationResult{
			Category:    r.Category,
			Confidence:  r.Confidence,
			MatchedRule: r.MatchedRule,
		}
	}
	return out, nil
}
