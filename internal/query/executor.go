// Package query runs SQL against Postgres and returns rows in the generic
// column-keyed form the renderer and API layer work with.
package query

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"stock-ai-service/internal/common/database"
	stderrors "stock-ai-service/internal/common/errors"
	"stock-ai-service/internal/common/logger"
)

// Executor wraps the Postgres client with a per-query deadline and generic
// row scanning. Column sets are not known ahead of time: semantic templates
// and LLM-generated SQL both flow through here.
type Executor struct {
	client  *database.PostgresClient
	timeout time.Duration
	log     logger.Logger
}

func NewExecutor(client *database.PostgresClient, timeout time.Duration, log logger.Logger) *Executor {
	return &Executor{
		client:  client,
		timeout: timeout,
		log:     log,
	}
}

// Execute runs one SELECT and materializes every row as a column-keyed map.
// Row order is whatever the statement's ORDER BY produced; the executor
// never reorders. queryType labels errors and logs only.
func (e *Executor) Execute(ctx context.Context, sqlQuery, queryType string) ([]map[string]interface{}, int, error) {
	queryCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := e.client.Query(queryCtx, sqlQuery)
	if err != nil {
		return nil, 0, e.classifyError(queryCtx, queryType, err)
	}
	defer rows.Close()

	results, err := scanRows(rows)
	if err != nil {
		return nil, 0, e.classifyError(queryCtx, queryType, err)
	}

	e.log.Debug("query executed", map[string]interface{}{
		"query_type":  queryType,
		"row_count":   len(results),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return results, len(results), nil
}

// Ping verifies database connectivity within a short bound.
func (e *Executor) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := e.client.Ping(pingCtx); err != nil {
		return stderrors.NewDatabaseConnectionFailedError(err)
	}
	return nil
}

func (e *Executor) classifyError(ctx context.Context, queryType string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		e.log.Warn("query timed out", map[string]interface{}{
			"query_type": queryType,
			"timeout":    e.timeout.String(),
		})
		return stderrors.NewQueryTimeoutError(queryType)
	}
	return stderrors.NewQueryExecutionFailedError(queryType, err)
}

// scanRows materializes all rows generically. Byte slices (how lib/pq
// returns text and numeric columns in untyped scans) become strings.
func scanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			switch v := values[i].(type) {
			case []byte:
				row[col] = string(v)
			default:
				row[col] = v
			}
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
