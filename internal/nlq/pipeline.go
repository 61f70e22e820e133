package nlq

import (
	"context"
	"errors"
	"strings"

	"github.com/locvowork/employee_activity_nlq/internal/domain"
	"github.com/locvowork/employee_activity_nlq/internal/logger"
)

const (
	// SuccessConfidence is reported when a statement ran and produced an answer.
	SuccessConfidence = 0.9
	// FailureConfidence is reported for every failed or empty answer.
	FailureConfidence = 0.0

	SynthesisFailureMessage = "Could not extract SQL from the question. Please try rephrasing it."
	ExecutionFailureMessage = "There was an issue with the query. Please try rephrasing your question."
)

// Result is the per-request state of one pipeline run. It is discarded once the answer is sent.
type Result struct {
	Question   string
	Intent     Intent
	Params     Params
	Statement  Statement
	Issues     []Issue
	Rows       *RowSet
	Text       string
	Confidence float64
	Stage      Stage
	Err        error
}

// Failed reports whether the run ended in the failed state.
func (r *Result) Failed() bool { return r.Stage == StageFailed }

// Kind returns the failure kind, or "" for successful runs.
func (r *Result) Kind() ErrorKind {
	var se *StageError
	if errors.As(r.Err, &se) {
		return se.Kind
	}
	return ""
}

// Answer converts the run into the answer record.
func (r *Result) Answer() domain.QueryResponse {
	resp := domain.QueryResponse{Response: r.Text, Confidence: r.Confidence}
	if r.Statement.SQL != "" {
		sql := r.Statement.Display()
		resp.SQLQuery = &sql
	}
	if r.Err != nil {
		msg := r.Err.Error()
		resp.Error = &msg
	}
	return resp
}

// Pipeline runs one question through the strategy's stages and the executor.
type Pipeline struct {
	strategy Strategy
	executor Executor
}

func NewPipeline(strategy Strategy, executor Executor) *Pipeline {
	return &Pipeline{strategy: strategy, executor: executor}
}

// Strategy returns the backend the pipeline was built with.
func (p *Pipeline) Strategy() Strategy { return p.strategy }

// Run never returns nil. Stages advance strictly in order and nothing is retried.
func (p *Pipeline) Run(ctx context.Context, question string) *Result {
	res := &Result{Question: question, Stage: StageReceived}
	question = strings.TrimSpace(question)
	if question == "" {
		return p.fail(ctx, res, StageReceived, KindSynthesis, ErrEmptyQuestion, SynthesisFailureMessage)
	}

	res.Intent = p.strategy.Classify(question)
	res.Stage = StageClassified
	ctx = logger.WithIntent(ctx, string(res.Intent))

	res.Params = p.strategy.ExtractParameters(question)
	res.Stage = StageParamsExtracted
	logger.DebugLog(ctx, "Classified question as %s with params %v", res.Intent, res.Params)

	stmt, err := p.strategy.Synthesize(ctx, question, res.Intent, res.Params)
	if err != nil {
		return p.fail(ctx, res, StageSQLSynthesized, KindSynthesis, err, SynthesisFailureMessage)
	}
	res.Statement = stmt
	res.Stage = StageSQLSynthesized

	res.Statement, res.Issues = p.strategy.Validate(stmt)
	for _, issue := range res.Issues {
		logger.WarnLog(logger.WithStage(ctx, string(StageValidated), ""), "SQL validation issue [%s]: %s", issue.Code, issue.Message)
	}
	res.Stage = StageValidated

	rows, err := p.executor.Execute(ctx, res.Statement)
	if err != nil {
		return p.fail(ctx, res, StageExecuted, KindExecution, err, ExecutionFailureMessage)
	}
	rows.markCapped(res.Statement.SQL)
	res.Rows = rows
	res.Stage = StageExecuted

	text, err := p.strategy.Format(question, rows, res.Intent)
	if err != nil {
		return p.fail(ctx, res, StageFormatted, KindFormatting, err, text)
	}
	res.Text = text
	res.Stage = StageFormatted

	if !rows.Empty() || res.Intent == IntentAggregation {
		res.Confidence = SuccessConfidence
	}
	res.Stage = StageDone
	return res
}

// fail moves the run to the terminal failed state. attempted is the stage that did not complete.
func (p *Pipeline) fail(ctx context.Context, res *Result, attempted Stage, kind ErrorKind, err error, message string) *Result {
	res.Err = &StageError{Stage: attempted, Kind: kind, Err: err}
	res.Text = message
	res.Confidence = FailureConfidence
	res.Stage = StageFailed
	logger.ErrorLog(logger.WithStage(ctx, string(attempted), string(kind)), "Pipeline failed: %v", res.Err)
	return res
}
