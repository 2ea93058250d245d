// internal/models/trend.go
package models

// TrendSnapshot is the latest trend reading for a symbol.
type TrendSnapshot struct {
	Symbol     string  `json:"symbol"`
	StockName  string  `json:"stock_name"`
	Date       string  `json:"date"`
	TrendValue string  `json:"trend_value"`
	TrendLabel string  `json:"trend_label"`
	Price      float64 `json:"price"`
	Volume     float64 `json:"volume,omitempty"`
}

// TrendTransition is one observed change between trend states.
type TrendTransition struct {
	Symbol    string `json:"symbol"`
	StockName string `json:"stock_name"`
	Date      string `json:"date"`
	FromValue string `json:"from_value"`
	FromLabel string `json:"from_label"`
	ToValue   string `json:"to_value"`
	ToLabel   string `json:"to_label"`
}

// TrendHistory aggregates day counts per trend label over a window.
type TrendHistory struct {
	Symbol    string         `json:"symbol"`
	StockName string         `json:"stock_name"`
	Days      int            `json:"days"`
	Counts    map[string]int `json:"counts"`
}

// TrendChangesResponse is the body of POST /trend/changes/{symbol}.
type TrendChangesResponse struct {
	Status      string            `json:"status"`
	Symbol      string            `json:"symbol"`
	Total       int               `json:"total"`
	Transitions []TrendTransition `json:"transitions"`
	Explanation string            `json:"explanation"`
}

// TrendAnalysisResponse is the combined body of POST /trend/analysis/{symbol}.
type TrendAnalysisResponse struct {
	Status      string            `json:"status"`
	Symbol      string            `json:"symbol"`
	Current     *TrendSnapshot    `json:"current,omitempty"`
	History     *TrendHistory     `json:"history,omitempty"`
	Transitions []TrendTransition `json:"transitions,omitempty"`
	Explanation string            `json:"explanation"`
}
