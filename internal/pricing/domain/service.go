package domain

import "context"

type Service interface {
	Quote(ctx context.Context, req MarkupRequest) (*MarkupResolution, error)
	PlanQuote(ctx context.Context, req PlanRequest) (*PlanResolution, error)
}
