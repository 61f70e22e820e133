package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/locvowork/employee_activity_nlq/internal/logger"
	"github.com/locvowork/employee_activity_nlq/internal/metrics"
	"github.com/locvowork/employee_activity_nlq/internal/nlq"
)

// QueryService answers natural-language questions through the query pipeline.
type QueryService interface {
	// Ask returns nlq.ErrEmptyQuestion for blank input; every other failure is carried in the result.
	Ask(ctx context.Context, requestID, question string) (*nlq.Result, error)
	Strategy() string
}

type queryService struct {
	pipeline *nlq.Pipeline
	clock    clockwork.Clock
}

func NewQueryService(pipeline *nlq.Pipeline, clock clockwork.Clock) QueryService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &queryService{pipeline: pipeline, clock: clock}
}

func (s *queryService) Strategy() string {
	return s.pipeline.Strategy().Name()
}

func (s *queryService) Ask(ctx context.Context, requestID, question string) (*nlq.Result, error) {
	if strings.TrimSpace(question) == "" {
		return nil, nlq.ErrEmptyQuestion
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}
	strategy := s.Strategy()
	ctx = logger.WithRequest(ctx, requestID, strategy)

	start := s.clock.Now()
	res := s.pipeline.Run(ctx, question)
	elapsed := s.clock.Since(start)

	metrics.QueryDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	for _, issue := range res.Issues {
		metrics.ValidationIssuesTotal.WithLabelValues(issue.Code).Inc()
	}

	outcome := "success"
	if res.Failed() {
		outcome = "failed"
		metrics.QueryFailuresTotal.WithLabelValues(strategy, string(res.Kind())).Inc()
	}
	metrics.QueriesTotal.WithLabelValues(strategy, string(res.Intent), outcome).Inc()

	logger.InfoLog(ctx, "Answered %q as %s in %s (stage=%s confidence=%.1f)",
		question, res.Intent, elapsed, res.Stage, res.Confidence)
	return res, nil
}
