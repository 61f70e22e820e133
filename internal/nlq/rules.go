package nlq

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/locvowork/employee_activity_nlq/internal/domain"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

type rulesFile struct {
	Intents                  map[string][]string `yaml:"intents"`
	Departments              map[string][]string `yaml:"departments"`
	StandaloneDepartmentCues map[string][]string `yaml:"standalone_department_cues"`
	JobTitles                []string            `yaml:"job_titles"`
	RoleTopics               []struct {
		Name          string   `yaml:"name"`
		Cues          []string `yaml:"cues"`
		TitleKeywords []string `yaml:"title_keywords"`
	} `yaml:"role_topics"`
}

type intentRule struct {
	intent   Intent
	triggers []*regexp.Regexp
}

type departmentRule struct {
	canonical  string
	patterns   []*regexp.Regexp
	standalone []*regexp.Regexp
}

// RoleTopic links question cues to job-title keywords for knowledge questions.
type RoleTopic struct {
	Name          string
	cues          []*regexp.Regexp
	TitleKeywords []string
}

// Rules is the compiled, read-only lexical configuration shared by all requests.
type Rules struct {
	intents     []intentRule
	departments []departmentRule
	jobTitles   []string
	roleTopics  []RoleTopic

	jobTitlePatterns []*regexp.Regexp
}

// DefaultRules compiles the embedded rules.yaml.
func DefaultRules() (*Rules, error) {
	return ParseRules(defaultRulesYAML)
}

// LoadRules reads rules from path, or the embedded defaults when path is empty.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes and compiles a rules document.
func ParseRules(data []byte) (*Rules, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}

	r := &Rules{}
	for _, t := range f.JobTitles {
		if t = strings.TrimSpace(t); t != "" {
			r.jobTitles = append(r.jobTitles, t)
		}
	}
	r.jobTitlePatterns = compilePhrases(r.jobTitles, true)

	for _, intent := range intentPrecedence {
		phrases := f.Intents[string(intent)]
		if len(phrases) == 0 {
			return nil, fmt.Errorf("rules: intent %q has no trigger phrases", intent)
		}
		r.intents = append(r.intents, intentRule{intent: intent, triggers: compilePhrases(phrases, true)})
	}
	for name := range f.Intents {
		if !Intent(name).Valid() {
			return nil, fmt.Errorf("rules: unknown intent %q", name)
		}
	}

	for _, dept := range domain.Departments {
		rule := departmentRule{canonical: dept}
		rule.patterns = append(rule.patterns, compilePhrases(f.Departments[dept], true)...)
		rule.standalone = compilePhrases(f.StandaloneDepartmentCues[dept], false)
		r.departments = append(r.departments, rule)
	}
	for name := range f.Departments {
		if !domain.IsDepartment(name) {
			return nil, fmt.Errorf("rules: unknown department %q", name)
		}
	}
	for name := range f.StandaloneDepartmentCues {
		if !domain.IsDepartment(name) {
			return nil, fmt.Errorf("rules: unknown department %q", name)
		}
	}

	for _, t := range f.RoleTopics {
		r.roleTopics = append(r.roleTopics, RoleTopic{
			Name:          t.Name,
			cues:          compilePhrases(t.Cues, true),
			TitleKeywords: t.TitleKeywords,
		})
	}
	return r, nil
}

// compilePhrases builds word-bounded matchers for each phrase.
func compilePhrases(phrases []string, foldCase bool) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(phrases))
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		expr := `\b` + regexp.QuoteMeta(p) + `\b`
		if foldCase {
			expr = `(?i)` + expr
		}
		out = append(out, regexp.MustCompile(expr))
	}
	return out
}

// JobTitles returns the known job titles.
func (r *Rules) JobTitles() []string {
	return append([]string(nil), r.jobTitles...)
}

// RoleTopicFor returns the first topic whose cue appears in question.
func (r *Rules) RoleTopicFor(question string) (RoleTopic, bool) {
	for _, t := range r.roleTopics {
		for _, re := range t.cues {
			if re.MatchString(question) {
				return t, true
			}
		}
	}
	return RoleTopic{}, false
}
