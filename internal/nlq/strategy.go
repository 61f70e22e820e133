package nlq

import (
	"context"

	"github.com/locvowork/employee_activity_nlq/internal/llm"
)

// Strategy is the capability contract every pipeline backend satisfies.
// Backends differ only in how they synthesize; the other stages are shared.
type Strategy interface {
	Name() string
	Classify(question string) Intent
	ExtractParameters(question string) Params
	Synthesize(ctx context.Context, question string, intent Intent, params Params) (Statement, error)
	Validate(stmt Statement) (Statement, []Issue)
	Format(question string, rows *RowSet, intent Intent) (string, error)
}

const (
	StrategyTemplate = "template"
	StrategyModel    = "model"
)

type strategy struct {
	name        string
	classifier  *Classifier
	extractor   *Extractor
	synthesizer Synthesizer
	validator   *Validator
	formatter   *Formatter
}

// NewTemplateStrategy synthesizes parameter-bound SQL from the rule-driven templates.
func NewTemplateStrategy(rules *Rules, schema *Schema) Strategy {
	return newStrategy(StrategyTemplate, rules, schema, NewTemplateSynthesizer(rules, schema))
}

// NewModelStrategy delegates synthesis to a completion service under the schema preamble.
func NewModelStrategy(rules *Rules, schema *Schema, client llm.Client, opts ModelOptions) Strategy {
	return newStrategy(StrategyModel, rules, schema, NewModelSynthesizer(client, schema, opts))
}

func newStrategy(name string, rules *Rules, schema *Schema, synth Synthesizer) *strategy {
	return &strategy{
		name:        name,
		classifier:  NewClassifier(rules),
		extractor:   NewExtractor(rules, schema),
		synthesizer: synth,
		validator:   NewValidator(schema),
		formatter:   NewFormatter(schema),
	}
}

func (s *strategy) Name() string { return s.name }

func (s *strategy) Classify(question string) Intent { return s.classifier.Classify(question) }

func (s *strategy) ExtractParameters(question string) Params { return s.extractor.Extract(question) }

func (s *strategy) Synthesize(ctx context.Context, question string, intent Intent, params Params) (Statement, error) {
	return s.synthesizer.Synthesize(ctx, question, intent, params)
}

func (s *strategy) Validate(stmt Statement) (Statement, []Issue) { return s.validator.Validate(stmt) }

func (s *strategy) Format(question string, rows *RowSet, intent Intent) (string, error) {
	return s.formatter.Format(question, rows, intent)
}
