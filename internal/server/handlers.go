package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stock-ai-service/internal/common/config"
	stderrors "stock-ai-service/internal/common/errors"
	"stock-ai-service/internal/common/logger"
	"stock-ai-service/internal/common/validation"
	"stock-ai-service/internal/llm"
	"stock-ai-service/internal/models"
	"stock-ai-service/internal/pipeline"
	"stock-ai-service/internal/query"
	"stock-ai-service/internal/trend"
	"stock-ai-service/pkg/semantics"
)

// Handlers bundles every dependency the HTTP layer needs.
type Handlers struct {
	processor   *pipeline.Processor
	executor    *query.Executor
	trends      *trend.Service
	llmClient   llm.Client
	registry    *semantics.Registry
	defaultDays int
	log         logger.Logger
}

func NewHandlers(cfg *config.Config, processor *pipeline.Processor, executor *query.Executor,
	trends *trend.Service, llmClient llm.Client, registry *semantics.Registry, log logger.Logger) *Handlers {
	days := cfg.Query.HistoryDays
	if days <= 0 {
		days = 7
	}
	return &Handlers{
		processor:   processor,
		executor:    executor,
		trends:      trends,
		llmClient:   llmClient,
		registry:    registry,
		defaultDays: days,
		log:         log,
	}
}

// Root describes the service and its endpoints.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "stock-ai-service",
		"message": "Natural language query service for stock market data",
		"endpoints": []string{
			"POST /query",
			"GET /health",
			"GET /database/status",
			"GET /suggestions",
			"GET /examples",
			"GET /fields/meanings",
			"GET /fields/:field/meaning",
			"GET /semantic/trend-values",
			"POST /trend/current/:symbol",
			"POST /trend/changes/:symbol",
			"POST /trend/history/:symbol",
			"POST /trend/analysis/:symbol",
			"GET /metrics",
		},
	})
}

// Health reports liveness of the service and its collaborators. The service
// itself is healthy even when collaborators are down; their state is in the
// body.
func (h *Handlers) Health(c *gin.Context) {
	dbConnected := h.executor.Ping(c.Request.Context()) == nil

	status := "healthy"
	if !dbConnected {
		status = "degraded"
	}
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:            status,
		DatabaseConnected: dbConnected,
		LLMAvailable:      h.llmClient.Available(),
		Timestamp:         time.Now().UTC(),
	})
}

// DatabaseStatus reports connectivity plus introspected schema for the two
// core tables.
func (h *Handlers) DatabaseStatus(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.executor.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, models.DatabaseStatusResponse{
			Status:  "disconnected",
			Message: "database is unreachable",
		})
		return
	}

	tables := make(map[string][]models.ColumnInfo)
	for _, table := range []string{"stock_data", "name_index"} {
		columns, err := h.executor.TableInfo(ctx, table)
		if err != nil {
			h.writeError(c, err)
			return
		}
		tables[table] = columns
	}
	c.JSON(http.StatusOK, models.DatabaseStatusResponse{
		Status: "connected",
		Tables: tables,
	})
}

// Query is the main entry point: natural language in, results plus
// explanation out.
func (h *Handlers) Query(c *gin.Context) {
	requestID := uuid.New().String()

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.writeError(c, stderrors.NewInvalidInputError("request body must be valid JSON"))
		return
	}

	result, err := validation.ValidateQueryRequest(body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !result.Valid {
		detail := "request body failed validation"
		if len(result.Errors) > 0 {
			detail = result.Errors[0].Field + ": " + result.Errors[0].Message
		}
		h.writeError(c, stderrors.NewInvalidInputError(detail))
		return
	}

	question, _ := body["question"].(string)
	limit := 0
	if raw, ok := body["limit"].(float64); ok {
		limit = int(raw)
	}
	h.log.Info("processing query", map[string]interface{}{
		"request_id":      requestID,
		"question_length": len(question),
		"limit":           limit,
	})

	response, err := h.processor.Process(c.Request.Context(), question, limit)
	if err != nil {
		h.log.WithError(err).Error("query processing failed", map[string]interface{}{
			"request_id": requestID,
		})
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Suggestions returns example questions, LLM-generated when available.
func (h *Handlers) Suggestions(c *gin.Context) {
	suggestions, err := h.llmClient.SuggestQuestions(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuggestionsResponse{
		Status:      "success",
		Suggestions: suggestions,
	})
}

// Examples returns a static list of question patterns per intent.
func (h *Handlers) Examples(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"examples": []gin.H{
			{
				"intent":   "trend_current",
				"question": "What is the trend on symbol 230011 today?",
			},
			{
				"intent":   "trend_change",
				"question": "When was the last time symbol 230011 moved from uptrend to downtrend?",
			},
			{
				"intent":   "trend_history",
				"question": "Show me the trend history for 230011 over the last 7 days",
			},
			{
				"intent":   "general",
				"question": "Which stocks closed higher than yesterday?",
			},
		},
	})
}

// FieldMeanings lists every semantic field definition.
func (h *Handlers) FieldMeanings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"fields": h.registry.All(),
	})
}

// FieldMeaning returns one field definition or 404.
func (h *Handlers) FieldMeaning(c *gin.Context) {
	name := c.Param("field")
	field, ok := h.registry.Lookup(name)
	if !ok {
		h.writeError(c, stderrors.NewUnknownFieldError(name))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"field":  field,
	})
}

// TrendValues exposes the trend code-to-meaning mapping.
func (h *Handlers) TrendValues(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"trend_values": h.registry.TrendValues(),
	})
}

// TrendCurrent returns the latest snapshot for a symbol.
func (h *Handlers) TrendCurrent(c *gin.Context) {
	snapshot, err := h.trends.Current(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Status:  "error",
			Message: "no data found for symbol " + c.Param("symbol"),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"current": snapshot,
	})
}

// TrendChanges returns trend transitions over a day window.
func (h *Handlers) TrendChanges(c *gin.Context) {
	symbol := c.Param("symbol")
	transitions, err := h.trends.Changes(c.Request.Context(), symbol, h.days(c),
		c.Query("from_trend"), c.Query("to_trend"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.TrendChangesResponse{
		Status:      "success",
		Symbol:      symbol,
		Total:       len(transitions),
		Transitions: transitions,
	})
}

// TrendHistory returns per-label day counts over a day window.
func (h *Handlers) TrendHistory(c *gin.Context) {
	history, err := h.trends.History(c.Request.Context(), c.Param("symbol"), h.days(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if history == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Status:  "error",
			Message: "no data found for symbol " + c.Param("symbol"),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"history": history,
	})
}

// TrendAnalysis combines current trend, history, and transitions.
func (h *Handlers) TrendAnalysis(c *gin.Context) {
	analysis, err := h.trends.Analysis(c.Request.Context(), c.Param("symbol"), h.days(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if analysis == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Status:  "error",
			Message: "no data found for symbol " + c.Param("symbol"),
		})
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// Metrics serves the Prometheus scrape endpoint.
func (h *Handlers) Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func (h *Handlers) days(c *gin.Context) int {
	raw := c.Query("days")
	if raw == "" {
		return h.defaultDays
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return h.defaultDays
	}
	return days
}

func (h *Handlers) writeError(c *gin.Context, err error) {
	stdErr := stderrors.Normalize(err)
	c.JSON(stderrors.HTTPStatus(stdErr.Code), models.ErrorResponse{
		Status:  "error",
		Code:    string(stdErr.Code),
		Message: stdErr.Message,
		Details: stdErr.Details,
	})
}
