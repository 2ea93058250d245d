package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "stock-ai-service/internal/common/errors"
	"stock-ai-service/internal/common/logger"
	"stock-ai-service/internal/render"
	"stock-ai-service/pkg/semantics"
)

type fakeExecutor struct {
	gotSQL       []string
	gotQueryType []string
	results      []map[string]interface{}
	err          error
}

func (f *fakeExecutor) Execute(_ context.Context, sqlQuery, queryType string) ([]map[string]interface{}, int, error) {
	f.gotSQL = append(f.gotSQL, sqlQuery)
	f.gotQueryType = append(f.gotQueryType, queryType)
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.results, len(f.results), nil
}

type fakeLLM struct {
	sql         string
	sqlErr      error
	explanation string
	available   bool
	generated   int
}

func (f *fakeLLM) GenerateSQL(_ context.Context, _ string) (string, error) {
	f.generated++
	if f.sqlErr != nil {
		return "", f.sqlErr
	}
	return f.sql, nil
}

func (f *fakeLLM) ExplainResults(_ context.Context, _ string, results []map[string]interface{}) (string, error) {
	if f.explanation != "" {
		return f.explanation, nil
	}
	return fmt.Sprintf("Found %d results for your question.", len(results)), nil
}

func (f *fakeLLM) SuggestQuestions(_ context.Context) ([]string, error) {
	return []string{"What is the trend on symbol 230011 today?"}, nil
}

func (f *fakeLLM) Available() bool { return f.available }

func newTestProcessor(t *testing.T, executor *fakeExecutor, llmClient *fakeLLM) *Processor {
	t.Helper()
	renderer := render.NewRenderer(semantics.NewRegistry())
	return NewProcessor(executor, renderer, llmClient, nil, logger.NewTestLogger(t))
}

func bezeqRow() map[string]interface{} {
	return map[string]interface{}{
		"Nrnum":     int64(230011),
		"Date":      "2025-07-27",
		"TheTrendD": int64(1),
		"Price":     634.6,
		"EngName":   "Bezeq",
	}
}

func TestProcessSemanticPath(t *testing.T) {
	executor := &fakeExecutor{results: []map[string]interface{}{bezeqRow()}}
	llmClient := &fakeLLM{available: true}
	processor := newTestProcessor(t, executor, llmClient)

	response, err := processor.Process(context.Background(), "What is the trend on symbol 230011 today?", 0)

	require.NoError(t, err)
	assert.Equal(t, "success", response.Status)
	assert.Equal(t, "semantic_trend_current", response.QueryType)
	assert.Equal(t, 1, response.RowCount)
	assert.Contains(t, response.SQLQuery, "230011")
	assert.NotContains(t, response.SQLQuery, "{symbol}")
	assert.Contains(t, response.Explanation, "Bezeq")
	assert.Contains(t, response.Explanation, "uptrend (long position)")
	assert.Equal(t, 0, llmClient.generated, "semantic path must not call the LLM")
}

func TestProcessEmptyQuestion(t *testing.T) {
	executor := &fakeExecutor{}
	processor := newTestProcessor(t, executor, &fakeLLM{available: true})

	tests := []string{"", "   ", "\n\t"}
	for _, question := range tests {
		_, err := processor.Process(context.Background(), question, 0)

		require.Error(t, err)
		var stdErr *stderrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, stderrors.ErrCodeInvalidInput, stdErr.Code)
	}
	assert.Empty(t, executor.gotSQL, "invalid input must be rejected before touching the database")
}

func TestProcessMissingEntityIsFatal(t *testing.T) {
	executor := &fakeExecutor{}
	llmClient := &fakeLLM{available: true, sql: "SELECT 1 LIMIT 0;"}
	processor := newTestProcessor(t, executor, llmClient)

	// Matches the current-trend rule via "current.*trend" but carries no
	// extractable symbol.
	_, err := processor.Process(context.Background(), "What is the current trend for my 401 stock?", 0)

	require.Error(t, err)
	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeMissingEntity, stdErr.Code)
	assert.Equal(t, 0, llmClient.generated, "missing entity must not trigger LLM fallback")
}

func TestProcessFallsBackToLLMOnExecutionFailure(t *testing.T) {
	llmClient := &fakeLLM{available: true, sql: "SELECT Nrnum FROM stock_data LIMIT 10;", explanation: "Here is what I found."}
	processor := newTestProcessor(t, &fakeExecutor{}, llmClient)

	// First execute fails (semantic), second succeeds (LLM).
	results := []map[string]interface{}{bezeqRow()}
	calls := 0
	processor.executor = executorFunc(func(ctx context.Context, sqlQuery, queryType string) ([]map[string]interface{}, int, error) {
		calls++
		if calls == 1 {
			return nil, 0, stderrors.NewQueryExecutionFailedError(queryType, fmt.Errorf("boom"))
		}
		return results, len(results), nil
	})

	response, err := processor.Process(context.Background(), "What is the trend on symbol 230011 today?", 0)

	require.NoError(t, err)
	assert.Equal(t, "llm_generated", response.QueryType)
	assert.Equal(t, "SELECT Nrnum FROM stock_data LIMIT 10;", response.SQLQuery)
	assert.Equal(t, "Here is what I found.", response.Explanation)
	assert.Equal(t, 1, llmClient.generated)
	assert.Equal(t, 2, calls)
}

func TestProcessLLMPathForUnmatchedQuestion(t *testing.T) {
	executor := &fakeExecutor{results: []map[string]interface{}{bezeqRow()}}
	llmClient := &fakeLLM{available: true, sql: "SELECT * FROM stock_data LIMIT 100;", explanation: "One row matched."}
	processor := newTestProcessor(t, executor, llmClient)

	response, err := processor.Process(context.Background(), "Which stocks had the biggest price move?", 0)

	require.NoError(t, err)
	assert.Equal(t, "llm_generated", response.QueryType)
	assert.Equal(t, []string{"llm_generated"}, executor.gotQueryType)
	assert.Equal(t, "One row matched.", response.Explanation)
}

func TestProcessLLMGenerationFailure(t *testing.T) {
	executor := &fakeExecutor{}
	llmClient := &fakeLLM{available: false, sqlErr: stderrors.NewLLMGenerationFailedError(fmt.Errorf("no API key"))}
	processor := newTestProcessor(t, executor, llmClient)

	_, err := processor.Process(context.Background(), "Which stocks had the biggest price move?", 0)

	require.Error(t, err)
	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeLLMGenerationFailed, stdErr.Code)
}

func TestProcessIsDeterministic(t *testing.T) {
	questions := []string{
		"What is the trend on symbol 230011 today?",
		"When was the last time symbol 230011 moved from uptrend to downtrend?",
		"Show me the trend history for 230011 over the last 7 days",
	}

	for _, question := range questions {
		t.Run(question, func(t *testing.T) {
			executor := &fakeExecutor{results: []map[string]interface{}{bezeqRow()}}
			processor := newTestProcessor(t, executor, &fakeLLM{available: true})

			first, err := processor.Process(context.Background(), question, 0)
			require.NoError(t, err)
			second, err := processor.Process(context.Background(), question, 0)
			require.NoError(t, err)

			assert.Equal(t, first.SQLQuery, second.SQLQuery)
			assert.Equal(t, first.Explanation, second.Explanation)
			assert.Equal(t, first.QueryType, second.QueryType)
		})
	}
}

func TestProcessCapsResultsAtLimit(t *testing.T) {
	rows := make([]map[string]interface{}, 0, 10)
	for i := 0; i < 10; i++ {
		rows = append(rows, bezeqRow())
	}
	executor := &fakeExecutor{results: rows}
	processor := newTestProcessor(t, executor, &fakeLLM{available: true})

	response, err := processor.Process(context.Background(), "Show me the trend history for 230011", 3)

	require.NoError(t, err)
	assert.Equal(t, 3, response.RowCount)
	assert.Len(t, response.Results, 3)
}

// executorFunc adapts a function to SQLExecutor for per-call behavior.
type executorFunc func(ctx context.Context, sqlQuery, queryType string) ([]map[string]interface{}, int, error)

func (f executorFunc) Execute(ctx context.Context, sqlQuery, queryType string) ([]map[string]interface{}, int, error) {
	return f(ctx, sqlQuery, queryType)
}
