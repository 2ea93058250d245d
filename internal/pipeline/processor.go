// Package pipeline orchestrates question processing: rule-based
// classification and templated SQL first, LLM-generated SQL as fallback.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	stderrors "stock-ai-service/internal/common/errors"
	"stock-ai-service/internal/common/logger"
	"stock-ai-service/internal/common/metrics"
	"stock-ai-service/internal/common/observability"
	"stock-ai-service/internal/llm"
	"stock-ai-service/internal/models"
	"stock-ai-service/internal/nlq"
	"stock-ai-service/internal/render"
)

// SQLExecutor is the slice of the query executor the pipeline needs.
type SQLExecutor interface {
	Execute(ctx context.Context, sqlQuery, queryType string) ([]map[string]interface{}, int, error)
}

// Processor runs one question through the semantic path and, when that
// path cannot answer, through the LLM path.
type Processor struct {
	classifier *nlq.Classifier
	extractor  *nlq.Extractor
	resolver   *nlq.Resolver
	executor   SQLExecutor
	renderer   *render.Renderer
	llmClient  llm.Client
	obs        *observability.Observability
	log        logger.Logger
}

func NewProcessor(executor SQLExecutor, renderer *render.Renderer, llmClient llm.Client,
	obs *observability.Observability, log logger.Logger) *Processor {
	return &Processor{
		classifier: nlq.NewClassifier(),
		extractor:  nlq.NewExtractor(),
		resolver:   nlq.NewResolver(),
		executor:   executor,
		renderer:   renderer,
		llmClient:  llmClient,
		obs:        obs,
		log:        log,
	}
}

// Process answers one natural-language question. The semantic path is
// authoritative when its query executes; execution failure falls through to
// the LLM path. A recognized intent missing a required entity is fatal:
// falling back would silently answer a different question than the one the
// rule understood. limit > 0 caps the rows returned to the caller; the
// rendered explanation always reflects the capped set.
func (p *Processor) Process(ctx context.Context, question string, limit int) (*models.QueryResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, stderrors.NewInvalidInputError("question must not be empty")
	}

	start := time.Now()

	rule, matched := p.classifier.Classify(question)
	if matched {
		response, err := p.processSemantic(ctx, question, rule, limit)
		if err == nil {
			p.record(ctx, response.QueryType, "success", time.Since(start))
			return response, nil
		}
		if isFatal(err) {
			p.recordFailure(ctx, "semantic_"+string(rule.Intent), err, time.Since(start))
			return nil, err
		}
		p.log.Warn("semantic path failed, falling back to LLM", map[string]interface{}{
			"intent": string(rule.Intent),
			"error":  err.Error(),
		})
		metrics.LLMFallbacks.Inc()
	}

	response, err := p.processLLM(ctx, question, limit)
	if err != nil {
		p.recordFailure(ctx, "llm_generated", err, time.Since(start))
		return nil, err
	}
	p.record(ctx, response.QueryType, "success", time.Since(start))
	return response, nil
}

func (p *Processor) processSemantic(ctx context.Context, question string, rule nlq.IntentRule, limit int) (*models.QueryResponse, error) {
	entities := p.extractor.Extract(question)

	sqlQuery, err := p.resolver.Resolve(rule, entities)
	if err != nil {
		if errors.Is(err, nlq.ErrMissingEntity) {
			return nil, stderrors.NewMissingEntityError("symbol", string(rule.Intent))
		}
		return nil, err
	}

	queryType := "semantic_" + string(rule.Intent)
	results, count, err := p.executor.Execute(ctx, sqlQuery, queryType)
	if err != nil {
		return nil, err
	}
	results, count = capResults(results, count, limit)

	return &models.QueryResponse{
		Status:      "success",
		Question:    question,
		SQLQuery:    sqlQuery,
		Results:     results,
		Explanation: p.renderer.Render(rule.Intent, results),
		RowCount:    count,
		QueryType:   queryType,
	}, nil
}

func (p *Processor) processLLM(ctx context.Context, question string, limit int) (*models.QueryResponse, error) {
	sqlQuery, err := p.llmClient.GenerateSQL(ctx, question)
	if err != nil {
		return nil, err
	}

	results, count, err := p.executor.Execute(ctx, sqlQuery, "llm_generated")
	if err != nil {
		return nil, err
	}
	results, count = capResults(results, count, limit)

	explanation, err := p.llmClient.ExplainResults(ctx, question, results)
	if err != nil {
		return nil, err
	}

	return &models.QueryResponse{
		Status:      "success",
		Question:    question,
		SQLQuery:    sqlQuery,
		Results:     results,
		Explanation: explanation,
		RowCount:    count,
		QueryType:   "llm_generated",
	}, nil
}

func capResults(results []map[string]interface{}, count, limit int) ([]map[string]interface{}, int) {
	if limit <= 0 || len(results) <= limit {
		return results, count
	}
	return results[:limit], limit
}

// isFatal reports whether a semantic-path error must surface to the caller
// instead of triggering the LLM fallback.
func isFatal(err error) bool {
	var stdErr *stderrors.StandardError
	if !errors.As(err, &stdErr) {
		return false
	}
	switch stdErr.Code {
	case stderrors.ErrCodeMissingEntity, stderrors.ErrCodeInvalidInput:
		return true
	}
	return false
}

func (p *Processor) record(ctx context.Context, queryType, status string, duration time.Duration) {
	metrics.QueriesProcessed.WithLabelValues(queryType).Inc()
	metrics.QueryDuration.WithLabelValues(queryType).Observe(duration.Seconds())
	if p.obs != nil {
		p.obs.RecordQueryProcessed(ctx, queryType, status)
		p.obs.RecordQueryDuration(ctx, duration, queryType)
	}
}

func (p *Processor) recordFailure(ctx context.Context, queryType string, err error, duration time.Duration) {
	code := stderrors.Normalize(err).Code
	metrics.QueriesFailed.WithLabelValues(queryType, string(code)).Inc()
	metrics.QueryDuration.WithLabelValues(queryType).Observe(duration.Seconds())
	if p.obs != nil {
		p.obs.RecordQueryProcessed(ctx, queryType, "error")
	}
}
