// Package render turns result rows into user-facing sentences, translating
// coded column values through the semantic field registry.
package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"stock-ai-service/internal/nlq"
	"stock-ai-service/pkg/semantics"
)

const maxTransitionsShown = 5

// Renderer writes intent-specific summaries of query results.
type Renderer struct {
	registry *semantics.Registry
}

func NewRenderer(registry *semantics.Registry) *Renderer {
	return &Renderer{registry: registry}
}

// Render dispatches on intent. Unknown intents get the generic row-count
// summary, so LLM-path results can reuse the same entry point.
func (r *Renderer) Render(intent nlq.Intent, rows []map[string]interface{}) string {
	switch intent {
	case nlq.IntentTrendCurrent:
		return r.TrendCurrent(rows)
	case nlq.IntentTrendChange:
		return r.TrendChange(rows)
	case nlq.IntentTrendHistory:
		return r.TrendHistory(rows)
	default:
		return r.Generic(rows)
	}
}

// TrendCurrent describes the latest snapshot row.
func (r *Renderer) TrendCurrent(rows []map[string]interface{}) string {
	if len(rows) == 0 {
		return "No data found for this stock symbol."
	}
	row := rows[0]
	name := r.displayName(row)
	trend := r.trendLabel(row, "TheTrendD")
	date := formatDate(value(row, "Date"))
	price := formatValue(value(row, "Price"))

	sentence := fmt.Sprintf("The current trend for %s (symbol %s) as of %s is %s.",
		name, formatValue(value(row, "Nrnum")), date, trend)
	if price != "" {
		sentence += fmt.Sprintf(" The stock price is %s.", price)
	}
	return sentence
}

// TrendChange describes uptrend-to-downtrend transitions. Rows carrying
// explicit from_trend/to_trend columns (the self-join template) are used
// directly; otherwise consecutive snapshot rows are compared in order.
func (r *Renderer) TrendChange(rows []map[string]interface{}) string {
	transitions := r.collectTransitions(rows)
	if len(transitions) == 0 {
		return "No trend changes found for this stock symbol."
	}

	name, symbol := "", ""
	if len(rows) > 0 {
		name = r.displayName(rows[0])
		symbol = formatValue(value(rows[0], "Nrnum"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d trend change(s) for %s (symbol %s).", len(transitions), name, symbol)
	shown := transitions
	if len(shown) > maxTransitionsShown {
		shown = shown[:maxTransitionsShown]
		fmt.Fprintf(&b, " Showing the %d most recent:", maxTransitionsShown)
	}
	for _, tr := range shown {
		fmt.Fprintf(&b, " The trend changed from %s to %s on %s.", tr.from, tr.to, tr.date)
	}
	return b.String()
}

// TrendHistory aggregates daily snapshots into per-trend day counts.
func (r *Renderer) TrendHistory(rows []map[string]interface{}) string {
	if len(rows) == 0 {
		return "No trend history found for this stock symbol."
	}

	counts := make(map[string]int)
	for _, row := range rows {
		counts[r.trendLabel(row, "TheTrendD")]++
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})

	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, fmt.Sprintf("%d day(s) of %s", counts[label], label))
	}

	return fmt.Sprintf("Over the last %d trading day(s), %s (symbol %s) showed: %s.",
		len(rows), r.displayName(rows[0]), formatValue(value(rows[0], "Nrnum")), strings.Join(parts, ", "))
}

// Generic is the fallback summary for LLM-generated queries.
func (r *Renderer) Generic(rows []map[string]interface{}) string {
	if len(rows) == 0 {
		return "The query returned no results."
	}
	return fmt.Sprintf("The query returned %d result(s).", len(rows))
}

type transition struct {
	from string
	to   string
	date string
}

func (r *Renderer) collectTransitions(rows []map[string]interface{}) []transition {
	transitions := make([]transition, 0)

	if len(rows) > 0 && value(rows[0], "from_trend") != nil {
		for _, row := range rows {
			transitions = append(transitions, transition{
				from: r.trendLabel(row, "from_trend"),
				to:   r.trendLabel(row, "to_trend"),
				date: formatDate(value(row, "Date")),
			})
		}
		return transitions
	}

	// Snapshot rows: compare consecutive days, oldest first.
	for i := 1; i < len(rows); i++ {
		prev := formatValue(value(rows[i-1], "TheTrendD"))
		curr := formatValue(value(rows[i], "TheTrendD"))
		if prev == curr {
			continue
		}
		transitions = append(transitions, transition{
			from: r.trendLabel(rows[i-1], "TheTrendD"),
			to:   r.trendLabel(rows[i], "TheTrendD"),
			date: formatDate(value(rows[i], "Date")),
		})
	}
	return transitions
}

// trendLabel interprets a trend column, reading a missing or NULL value as
// "unknown" rather than fmt's rendering of nil.
func (r *Renderer) trendLabel(row map[string]interface{}, column string) string {
	v := value(row, column)
	if v == nil {
		return "unknown"
	}
	return r.registry.Interpret("TheTrendD", v)
}

// displayName prefers the English name, then the Hebrew name, then a
// symbol-based placeholder.
func (r *Renderer) displayName(row map[string]interface{}) string {
	if name := formatValue(value(row, "EngName")); name != "" {
		return name
	}
	if name := formatValue(value(row, "HebName")); name != "" {
		return name
	}
	return fmt.Sprintf("Stock %s", formatValue(value(row, "Nrnum")))
}

// value looks a column up case-insensitively. Postgres folds unquoted
// identifiers to lowercase, so "TheTrendD" comes back as "thetrendd".
func value(row map[string]interface{}, column string) interface{} {
	if v, ok := row[column]; ok {
		return v
	}
	lower := strings.ToLower(column)
	for key, v := range row {
		if strings.ToLower(key) == lower {
			return v
		}
	}
	return nil
}

func formatValue(v interface{}) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", t), "0"), ".")
	case time.Time:
		return t.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatDate(v interface{}) string {
	if v == nil {
		return "an unknown date"
	}
	if t, ok := v.(time.Time); ok {
		return t.Format("2006-01-02")
	}
	s := fmt.Sprintf("%v", v)
	if len(s) >= 10 {
		if parsed, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return parsed.Format("2006-01-02")
		}
	}
	return s
}
