package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/crop-advisory-service/internal/domain"
)

// Advisor answers a parsed advisory request.
type Advisor interface {
	Advise(ctx context.Context, req domain.AdvisoryRequest) (domain.Advisory, error)
}

// AdvisoryTransformer implements Transformer by parsing the request,
// running the advisor, and serializing the result.
type AdvisoryTransformer struct {
	advisor Advisor
	logger  *slog.Logger
}

// NewTransformer creates an AdvisoryTransformer backed by advisor.
func NewTransformer(advisor Advisor, logger *slog.Logger) *AdvisoryTransformer {
	return &AdvisoryTransformer{
		advisor: advisor,
		logger:  logger,
	}
}

func (t *AdvisoryTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	req, err := domain.ParseAdvisoryRequest(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	a, err := t.advisor.Advise(ctx, req)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	t.logger.Debug("advisory built",
		"request_id", req.RequestID,
		"advisory_id", a.ID,
		"top_crop", a.TopCrop(),
	)
	return domain.SerializeAdvisory(a)
}
