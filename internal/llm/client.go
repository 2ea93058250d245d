// Package llm generates SQL and natural-language explanations for questions
// the rule-based classifier cannot handle.
package llm

import "context"

// Client is the language-model surface the query pipeline depends on.
// Implementations must be safe for concurrent use.
type Client interface {
	// GenerateSQL translates a question into a single executable SELECT
	// statement against the stock schema. The returned SQL is already
	// cleaned: no markdown fences, terminated with ";", LIMIT present.
	GenerateSQL(ctx context.Context, question string) (string, error)

	// ExplainResults summarizes result rows in plain language. It degrades
	// to a row-count sentence instead of failing; the error return is
	// reserved for context cancellation.
	ExplainResults(ctx context.Context, question string, results []map[string]interface{}) (string, error)

	// SuggestQuestions returns example questions a user could ask.
	SuggestQuestions(ctx context.Context) ([]string, error)

	// Available reports whether the backing model is configured.
	Available() bool
}
