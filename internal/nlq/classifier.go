// Package nlq maps free-text questions onto the fixed intent taxonomy and
// produces the SQL for intents it recognizes.
package nlq

import (
	"regexp"
	"strings"
)

// Intent tags the classified purpose of a question.
type Intent string

const (
	IntentTrendCurrent Intent = "trend_current"
	IntentTrendChange  Intent = "trend_change"
	IntentTrendHistory Intent = "trend_history"

	// IntentGeneral marks a question no rule matched; the caller delegates
	// SQL generation to the LLM. This is a valid outcome, not an error.
	IntentGeneral Intent = "general"
)

// IntentRule binds an intent to its recognition patterns and SQL template.
// Rule order and pattern order are load-bearing: the first match wins, ties
// resolved by declaration position, never by specificity.
type IntentRule struct {
	Intent      Intent
	Patterns    []*regexp.Regexp
	SQLTemplate string
}

// intentRules is the ordered rule list. Questions are lowercased before
// matching, so patterns are written in lowercase.
var intentRules = []IntentRule{
	{
		Intent: IntentTrendCurrent,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`trend.*symbol\s+(\d+)`),
			regexp.MustCompile(`trend.*stock\s+(\d+)`),
			regexp.MustCompile(`(\d+).*trend.*today`),
			regexp.MustCompile(`current.*trend.*(\d+)`),
			regexp.MustCompile(`how.*(\d+).*trending`),
		},
		SQLTemplate: `
			SELECT s.Nrnum, s.Date, s.TheTrendD, s.Price, s.UpsDowns,
			       n.HebName, n.EngName
			FROM stock_data s
			LEFT JOIN name_index n ON s.Nrnum = n.Nrnum
			WHERE s.Nrnum = {symbol}
			ORDER BY s.Date DESC
			LIMIT 1`,
	},
	{
		Intent: IntentTrendChange,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`last.*time.*(\d+).*moved.*uptrend.*downtrend`),
			regexp.MustCompile(`last.*time.*(\d+).*changed.*long.*short`),
			regexp.MustCompile(`when.*(\d+).*moved.*up.*down`),
			regexp.MustCompile(`trend.*change.*(\d+)`),
		},
		SQLTemplate: `
			SELECT s1.Nrnum, s1.Date, s1.TheTrendD AS from_trend,
			       s2.TheTrendD AS to_trend, s1.Price, s1.UpsDowns,
			       n.HebName, n.EngName
			FROM stock_data s1
			JOIN stock_data s2 ON s1.Nrnum = s2.Nrnum
			    AND s1.Date < s2.Date
			LEFT JOIN name_index n ON s1.Nrnum = n.Nrnum
			WHERE s1.Nrnum = {symbol}
			    AND s1.TheTrendD = 1 AND s2.TheTrendD = 2
			ORDER BY s1.Date DESC
			LIMIT 10`,
	},
	{
		Intent: IntentTrendHistory,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`trend.*history.*(\d+)`),
			regexp.MustCompile(`(\d+).*trend.*last.*(\d+).*days`),
			regexp.MustCompile(`how.*(\d+).*trending.*last`),
		},
		SQLTemplate: `
			SELECT s.Nrnum, s.Date, s.TheTrendD, s.Price, s.UpsDowns,
			       n.HebName, n.EngName
			FROM stock_data s
			LEFT JOIN name_index n ON s.Nrnum = n.Nrnum
			WHERE s.Nrnum = {symbol}
			ORDER BY s.Date DESC
			LIMIT {days}`,
	},
}

// Classifier selects the first IntentRule whose pattern set matches.
type Classifier struct {
	rules []IntentRule
}

// NewClassifier builds a classifier over the built-in ordered rule list.
func NewClassifier() *Classifier {
	return &Classifier{rules: intentRules}
}

// NewClassifierWith builds a classifier over an explicit rule list, in order.
func NewClassifierWith(rules []IntentRule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the first matching rule, or ok=false for the general
// (LLM fallback) case. Matching is case-insensitive substring search.
func (c *Classifier) Classify(question string) (IntentRule, bool) {
	lower := strings.ToLower(question)
	for _, rule := range c.rules {
		for _, pattern := range rule.Patterns {
			if pattern.MatchString(lower) {
				return rule, true
			}
		}
	}
	return IntentRule{Intent: IntentGeneral}, false
}

// Rules exposes the ordered rule list (read-only by convention).
func (c *Classifier) Rules() []IntentRule {
	return c.rules
}
