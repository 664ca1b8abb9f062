// Package rules evaluates keyword and pattern rules against transactions,
// with priority-based conflict resolution. Absence of a match is a normal
// outcome, never an error.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"ledgerunify/internal/logging"
	"ledgerunify/internal/models"
)

// compiledRule pairs a configured rule with its pre-compiled patterns and its
// position in the configured list, which breaks equal-priority ties.
type compiledRule struct {
	rule     models.CategoryRule
	keywords []string // lowercased once at compile time
	patterns []*regexp.Regexp
	order    int
}

// RuleSet is a validated, compiled set of category rules ready for matching.
type RuleSet struct {
	rules []compiledRule
}

// Compile validates the configured rules and compiles their patterns once.
// A broken regex fails the whole load; misconfiguration should surface at
// startup, not per transaction.
func Compile(configured []models.CategoryRule) (*RuleSet, error) {
	set := &RuleSet{rules: make([]compiledRule, 0, len(configured))}

	for i, r := range configured {
		if r.Name == "" {
			return nil, fmt.Errorf("rule %d: category name is required", i)
		}
		cr := compiledRule{rule: r, order: i}
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				cr.keywords = append(cr.keywords, kw)
			}
		}
		for _, p := range r.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("rule %q: invalid pattern %q: %w", r.Name, p, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		set.rules = append(set.rules, cr)
	}

	return set, nil
}

// Categories returns the category vocabulary declared by this rule set.
func (s *RuleSet) Categories() []string {
	configured := make([]models.CategoryRule, len(s.rules))
	for i, cr := range s.rules {
		configured[i] = cr.rule
	}
	return models.CategoryNames(configured)
}

// Len returns the number of rules in the set.
func (s *RuleSet) Len() int {
	return len(s.rules)
}

// Engine matches transactions against a compiled rule set.
type Engine struct {
	logger logging.Logger
}

// NewEngine creates a rule engine. A nil logger falls back to the shared
// default.
func NewEngine(logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{logger: logger}
}

// Classify tests the transaction against every rule in the set. A rule
// matches when any keyword appears as a case-insensitive substring of the
// counterparty+description haystack, or any pattern matches it. When several
// rules match, the lowest priority value wins; equal priorities resolve to
// the rule declared first. No match returns ("", false).
func (e *Engine) Classify(tx models.Transaction, set *RuleSet) (string, bool) {
	if set == nil || len(set.rules) == 0 {
		return "", false
	}

	haystack := strings.ToLower(tx.Counterparty + " " + tx.Description)

	var best *compiledRule
	for i := range set.rules {
		cr := &set.rules[i]
		if !cr.matches(haystack) {
			continue
		}
		if best == nil || cr.rule.Priority < best.rule.Priority {
			best = cr
		}
		// Equal priority: best keeps the earlier declaration, since rules
		// are scanned in configured order.
	}

	if best == nil {
		return "", false
	}

	e.logger.Debug("Transaction matched category rule",
		logging.Field{Key: "transaction", Value: tx.ID},
		logging.Field{Key: "category", Value: best.rule.Name},
		logging.Field{Key: "priority", Value: best.rule.Priority})

	return best.rule.Name, true
}

func (cr *compiledRule) matches(haystack string) bool {
	for _, kw := range cr.keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	for _, re := range cr.patterns {
		if re.MatchString(haystack) {
			return true
		}
	}
	return false
}
