package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"stock-ai-service/internal/common/config"
	stderrors "stock-ai-service/internal/common/errors"
	"stock-ai-service/internal/common/logger"
	"stock-ai-service/internal/models"
	"stock-ai-service/pkg/semantics"
)

// SchemaProvider supplies live table layouts for the SQL prompt, typically
// the query executor's information-schema introspection.
type SchemaProvider interface {
	TableInfo(ctx context.Context, table string) ([]models.ColumnInfo, error)
}

// schemaTables are the tables described to the model.
var schemaTables = []string{"stock_data", "name_index"}

// OpenAI chat completions wire types. The client speaks the REST API
// directly over net/http; no SDK.

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	Temperature *float32        `json:"temperature,omitempty"`
	MaxTokens   *int            `json:"max_completion_tokens,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	ID      string         `json:"id"`
	Choices []openaiChoice `json:"choices"`
	Error   *openaiError   `json:"error,omitempty"`
}

type openaiChoice struct {
	Index        int           `json:"index"`
	Message      openaiMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openaiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// refusalMarkers identify responses where the model declined to produce SQL.
var refusalMarkers = []string{
	"i cannot",
	"i can't",
	"i'm sorry",
	"i am sorry",
	"cannot be translated",
	"unable to",
	"as an ai",
}

// defaultSuggestions is served when the model is unavailable or errors.
var defaultSuggestions = []string{
	"What is the trend on symbol 230011 today?",
	"When was the last time symbol 230011 moved from uptrend to downtrend?",
	"Show me the trend history for symbol 230011 over the last 7 days",
	"Which stocks are currently in an uptrend?",
	"What is the price of symbol 230011?",
}

// OpenAIClient implements Client over the OpenAI chat completions API.
type OpenAIClient struct {
	httpClient   *http.Client
	apiKey       string
	model        string
	baseURL      string
	defaultLimit int
	registry     *semantics.Registry
	schema       SchemaProvider
	log          logger.Logger

	mu         sync.Mutex
	liveSchema string
}

// NewOpenAIClient builds a client from service configuration. The registry
// supplies column meanings for the schema description; schema, when non-nil,
// supplies live table layouts that override the registry's column list.
func NewOpenAIClient(cfg *config.Config, registry *semantics.Registry, schema SchemaProvider, log logger.Logger) *OpenAIClient {
	return &OpenAIClient{
		httpClient:   &http.Client{Timeout: config.GetDuration(cfg.APIs.OpenAI.Timeout)},
		apiKey:       cfg.APIs.OpenAI.APIKey,
		model:        cfg.APIs.OpenAI.Model,
		baseURL:      cfg.APIs.OpenAI.BaseURL,
		defaultLimit: cfg.Query.DefaultLimit,
		registry:     registry,
		schema:       schema,
		log:          log,
	}
}

// Available reports whether an API key is configured. When false, every
// generation call fails fast without a network round trip.
func (c *OpenAIClient) Available() bool {
	return c.apiKey != ""
}

func (c *OpenAIClient) GenerateSQL(ctx context.Context, question string) (string, error) {
	if !c.Available() {
		return "", stderrors.NewLLMGenerationFailedError(fmt.Errorf("no API key configured"))
	}

	raw, err := c.complete(ctx, c.sqlSystemPrompt(ctx), question)
	if err != nil {
		return "", c.wrapGenerationError(ctx, err)
	}

	sql := CleanSQL(raw, c.defaultLimit)
	c.log.Debug("generated SQL from question", map[string]interface{}{
		"question_length": len(question),
		"sql":             sql,
	})
	return sql, nil
}

func (c *OpenAIClient) ExplainResults(ctx context.Context, question string, results []map[string]interface{}) (string, error) {
	fallback := fmt.Sprintf("Found %d results for your question.", len(results))
	if !c.Available() {
		return fallback, nil
	}

	sample := results
	if len(sample) > 10 {
		sample = sample[:10]
	}
	payload, err := json.Marshal(sample)
	if err != nil {
		return fallback, nil
	}

	prompt := fmt.Sprintf("Question: %s\n\nQuery results (JSON):\n%s\n\nSummarize these results in one or two plain sentences for the user.", question, payload)
	answer, err := c.complete(ctx, "You are a financial data assistant. Be concise and factual.", prompt)
	if err != nil {
		if ctx.Err() != nil {
			return "", stderrors.NewLLMTimeoutError()
		}
		c.log.Warn("explanation generation failed, using fallback", map[string]interface{}{
			"error": err.Error(),
		})
		return fallback, nil
	}
	return strings.TrimSpace(answer), nil
}

func (c *OpenAIClient) SuggestQuestions(ctx context.Context) ([]string, error) {
	if !c.Available() {
		return defaultSuggestions, nil
	}

	prompt := fmt.Sprintf("The database schema is:\n%s\nPropose 5 short example questions a user could ask about this stock data. Return one question per line, no numbering.", c.schemaSection(ctx))
	answer, err := c.complete(ctx, "You are a financial data assistant.", prompt)
	if err != nil {
		c.log.Warn("suggestion generation failed, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return defaultSuggestions, nil
	}

	var suggestions []string
	for _, line := range strings.Split(answer, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. "))
		if line != "" {
			suggestions = append(suggestions, line)
		}
	}
	if len(suggestions) == 0 {
		return defaultSuggestions, nil
	}
	return suggestions, nil
}

// complete sends a two-message chat completion and returns the assistant text.
func (c *OpenAIClient) complete(ctx context.Context, system, user string) (string, error) {
	reqPayload := openaiRequest{
		Model: c.model,
		Messages: []openaiMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	reqBody, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(bodyBytes), 200))
	}

	var apiResp openaiResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return "", fmt.Errorf("parsing response JSON: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("API error: %s - %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("API returned no choices")
	}

	return apiResp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) wrapGenerationError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return stderrors.NewLLMTimeoutError()
	}
	return stderrors.NewLLMGenerationFailedError(err)
}

// CleanSQL normalizes raw model output into an executable statement.
// Markdown fences are stripped, refusals and non-SELECT output collapse to a
// harmless empty-result query, a LIMIT clause is appended when absent, and
// the statement is terminated with ";".
func CleanSQL(raw string, defaultLimit int) string {
	sql := strings.TrimSpace(raw)
	sql = strings.TrimPrefix(sql, "```sql")
	sql = strings.TrimPrefix(sql, "```")
	sql = strings.TrimSuffix(sql, "```")
	sql = strings.TrimSpace(sql)
	sql = strings.TrimSuffix(sql, ";")
	sql = strings.TrimSpace(sql)

	lower := strings.ToLower(sql)
	for _, marker := range refusalMarkers {
		if strings.Contains(lower, marker) {
			return "SELECT 1 LIMIT 0;"
		}
	}
	if !strings.HasPrefix(lower, "select") && !strings.HasPrefix(lower, "with") {
		return "SELECT 1 LIMIT 0;"
	}
	// Unresolved template placeholders cannot execute.
	if strings.Contains(sql, "{") {
		return "SELECT 1 LIMIT 0;"
	}

	if !strings.Contains(lower, "limit") {
		sql = fmt.Sprintf("%s LIMIT %d", sql, defaultLimit)
	}
	return sql + ";"
}

// sqlSystemPrompt embeds the schema description so the model only
// references columns that exist.
func (c *OpenAIClient) sqlSystemPrompt(ctx context.Context) string {
	var b strings.Builder
	b.WriteString("You translate questions about stock data into a single SQL SELECT statement.\n")
	b.WriteString("Rules: output only SQL, no explanation, no markdown. Only SELECT statements. Always include a LIMIT clause.\n\n")
	b.WriteString(c.schemaSection(ctx))
	return b.String()
}

// schemaSection returns the schema text for prompts: the introspected table
// layouts when a provider is wired, the registry description otherwise.
// Introspection runs once and is cached; a failed load falls back to the
// registry and is retried on the next call.
func (c *OpenAIClient) schemaSection(ctx context.Context) string {
	if c.schema == nil {
		return registrySchemaDescription(c.registry)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.liveSchema != "" {
		return c.liveSchema
	}

	// Postgres folds unquoted identifiers to lowercase, so meanings are
	// matched case-insensitively against the registry.
	meanings := make(map[string]semantics.FieldDefinition)
	for name, field := range c.registry.All() {
		meanings[strings.ToLower(name)] = field
	}

	var b strings.Builder
	b.WriteString("Tables:\n")
	for _, table := range schemaTables {
		columns, err := c.schema.TableInfo(ctx, table)
		if err != nil || len(columns) == 0 {
			c.log.Warn("schema introspection failed, using registry description", map[string]interface{}{
				"table": table,
			})
			return registrySchemaDescription(c.registry)
		}
		fmt.Fprintf(&b, "  %s:\n", table)
		for _, col := range columns {
			fmt.Fprintf(&b, "    %s %s", col.Field, col.Type)
			if field, ok := meanings[strings.ToLower(col.Field)]; ok {
				fmt.Fprintf(&b, " -- %s", field.Description)
				if len(field.PossibleValues) > 0 {
					fmt.Fprintf(&b, " (values: %s)", formatValues(field.PossibleValues))
				}
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("name_index joins stock_data on Nrnum.\n")

	c.liveSchema = b.String()
	return c.liveSchema
}

func registrySchemaDescription(registry *semantics.Registry) string {
	var b strings.Builder
	b.WriteString("Tables:\n")
	b.WriteString("  stock_data: daily stock rows\n")
	b.WriteString("  name_index: symbol to name mapping, joined on Nrnum\n")
	b.WriteString("Columns:\n")
	for _, field := range registry.All() {
		fmt.Fprintf(&b, "  %s.%s: %s", field.Table, field.FieldName, field.Description)
		if len(field.PossibleValues) > 0 {
			fmt.Fprintf(&b, " (values: %s)", formatValues(field.PossibleValues))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatValues(values map[string]string) string {
	parts := make([]string, 0, len(values))
	for _, key := range []string{"0", "1", "2"} {
		if meaning, ok := values[key]; ok {
			parts = append(parts, fmt.Sprintf("%s=%s", key, meaning))
		}
	}
	if len(parts) == 0 {
		for key, meaning := range values {
			parts = append(parts, fmt.Sprintf("%s=%s", key, meaning))
		}
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
