package nlq

// Intent is the coarse category of a question.
type Intent string

const (
	IntentPoint       Intent = "point"
	IntentAggregation Intent = "aggregation"
	IntentKnowledge   Intent = "knowledge"
	IntentReasoning   Intent = "reasoning"
	IntentMatch       Intent = "match"
	IntentComparison  Intent = "comparison"
	IntentRanking     Intent = "ranking"
)

// intentPrecedence is the order in which trigger sets are tested.
var intentPrecedence = []Intent{
	IntentPoint,
	IntentAggregation,
	IntentKnowledge,
	IntentReasoning,
	IntentMatch,
	IntentComparison,
	IntentRanking,
}

// Intents returns every intent in precedence order.
func Intents() []Intent {
	return append([]Intent(nil), intentPrecedence...)
}

func (i Intent) Valid() bool {
	for _, known := range intentPrecedence {
		if i == known {
			return true
		}
	}
	return false
}

func (i Intent) String() string { return string(i) }

// Classifier maps questions to intents with the rule table's trigger phrases.
type Classifier struct {
	rules *Rules
}

func NewClassifier(rules *Rules) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the first intent whose trigger matches, or IntentPoint.
func (c *Classifier) Classify(question string) Intent {
	for _, rule := range c.rules.intents {
		for _, re := range rule.triggers {
			if re.MatchString(question) {
				return rule.intent
			}
		}
	}
	return IntentPoint
}
