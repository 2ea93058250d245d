// Package trend serves the structured trend endpoints that bypass
// natural-language processing: known symbol in, typed trend data out.
package trend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"stock-ai-service/internal/common/database"
	stderrors "stock-ai-service/internal/common/errors"
	"stock-ai-service/internal/common/logger"
	"stock-ai-service/internal/models"
	"stock-ai-service/pkg/semantics"
)

const (
	currentSQL = `
		SELECT s.Nrnum, s.Date, s.TheTrendD, s.Price,
		       COALESCE(n.EngName, ''), COALESCE(n.HebName, '')
		FROM stock_data s
		LEFT JOIN name_index n ON s.Nrnum = n.Nrnum
		WHERE s.Nrnum = $1
		ORDER BY s.Date DESC
		LIMIT 1`

	historySQL = `
		SELECT s.Nrnum, s.Date, s.TheTrendD, s.Price,
		       COALESCE(n.EngName, ''), COALESCE(n.HebName, '')
		FROM stock_data s
		LEFT JOIN name_index n ON s.Nrnum = n.Nrnum
		WHERE s.Nrnum = $1
		ORDER BY s.Date DESC
		LIMIT $2`
)

// Service answers trend questions for explicit symbols with parameterized
// queries; no templating or LLM involvement.
type Service struct {
	client   *database.PostgresClient
	registry *semantics.Registry
	log      logger.Logger
}

func NewService(client *database.PostgresClient, registry *semantics.Registry, log logger.Logger) *Service {
	return &Service{
		client:   client,
		registry: registry,
		log:      log,
	}
}

// ValidateSymbol rejects anything that is not a plain digit run.
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return stderrors.NewInvalidInputError("symbol must not be empty")
	}
	if _, err := strconv.Atoi(symbol); err != nil {
		return stderrors.NewInvalidInputError(fmt.Sprintf("symbol %q is not numeric", symbol))
	}
	return nil
}

// Current returns the latest snapshot for a symbol, or nil when the symbol
// has no data.
func (s *Service) Current(ctx context.Context, symbol string) (*models.TrendSnapshot, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	row := s.client.QueryRow(ctx, currentSQL, symbol)
	snapshot, err := s.scanSnapshot(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, stderrors.NewQueryExecutionFailedError("trend_current", err)
	}
	return snapshot, nil
}

// History returns per-label day counts over the last days snapshots.
func (s *Service) History(ctx context.Context, symbol string, days int) (*models.TrendHistory, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, stderrors.NewInvalidInputError("days must be positive")
	}

	snapshots, err := s.window(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, nil
	}

	counts := make(map[string]int)
	for _, snap := range snapshots {
		counts[snap.TrendLabel]++
	}
	return &models.TrendHistory{
		Symbol:    symbol,
		StockName: snapshots[0].StockName,
		Days:      len(snapshots),
		Counts:    counts,
	}, nil
}

// Changes returns trend transitions observed over the last days snapshots,
// most recent first. fromTrend and toTrend optionally restrict the result to
// transitions out of / into a specific trend code; empty means any.
func (s *Service) Changes(ctx context.Context, symbol string, days int, fromTrend, toTrend string) ([]models.TrendTransition, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, stderrors.NewInvalidInputError("days must be positive")
	}

	snapshots, err := s.window(ctx, symbol, days)
	if err != nil {
		return nil, err
	}

	// Window is newest-first; compare each day against the one before it.
	transitions := make([]models.TrendTransition, 0)
	for i := 0; i+1 < len(snapshots); i++ {
		newer, older := snapshots[i], snapshots[i+1]
		if newer.TrendValue == older.TrendValue {
			continue
		}
		if fromTrend != "" && older.TrendValue != fromTrend {
			continue
		}
		if toTrend != "" && newer.TrendValue != toTrend {
			continue
		}
		transitions = append(transitions, models.TrendTransition{
			Symbol:    symbol,
			StockName: newer.StockName,
			Date:      newer.Date,
			FromValue: older.TrendValue,
			FromLabel: older.TrendLabel,
			ToValue:   newer.TrendValue,
			ToLabel:   newer.TrendLabel,
		})
	}
	return transitions, nil
}

// Analysis combines the current snapshot, history counts, and transitions
// into one response.
func (s *Service) Analysis(ctx context.Context, symbol string, days int) (*models.TrendAnalysisResponse, error) {
	current, err := s.Current(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}

	history, err := s.History(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	transitions, err := s.Changes(ctx, symbol, days, "", "")
	if err != nil {
		return nil, err
	}

	explanation := fmt.Sprintf("%s (symbol %s) is currently in %s with %d trend change(s) over the last %d day(s).",
		current.StockName, symbol, current.TrendLabel, len(transitions), days)

	return &models.TrendAnalysisResponse{
		Status:      "success",
		Symbol:      symbol,
		Current:     current,
		History:     history,
		Transitions: transitions,
		Explanation: explanation,
	}, nil
}

func (s *Service) window(ctx context.Context, symbol string, days int) ([]models.TrendSnapshot, error) {
	rows, err := s.client.Query(ctx, historySQL, symbol, days)
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("trend_history", err)
	}
	defer rows.Close()

	snapshots := make([]models.TrendSnapshot, 0, days)
	for rows.Next() {
		snap, err := s.scanSnapshot(rows.Scan)
		if err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("trend_history", err)
		}
		snapshots = append(snapshots, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("trend_history", err)
	}
	return snapshots, nil
}

func (s *Service) scanSnapshot(scan func(dest ...interface{}) error) (*models.TrendSnapshot, error) {
	var (
		nrnum    int64
		date     sql.NullTime
		trend    sql.NullInt64
		price    sql.NullFloat64
		engName  string
		hebName  string
	)
	if err := scan(&nrnum, &date, &trend, &price, &engName, &hebName); err != nil {
		return nil, err
	}

	// lib/pq hands DATE back as time.Time; keep the wire format day-only so
	// direct endpoints and rendered sentences agree.
	dateText := ""
	if date.Valid {
		dateText = date.Time.Format("2006-01-02")
	}

	trendValue := ""
	if trend.Valid {
		trendValue = strconv.FormatInt(trend.Int64, 10)
	}
	name := engName
	if name == "" {
		name = hebName
	}
	if name == "" {
		name = fmt.Sprintf("Stock %d", nrnum)
	}

	return &models.TrendSnapshot{
		Symbol:     strconv.FormatInt(nrnum, 10),
		StockName:  name,
		Date:       dateText,
		TrendValue: trendValue,
		TrendLabel: s.registry.Interpret("TheTrendD", trendValue),
		Price:      price.Float64,
	}, nil
}
