// internal/models/query.go
package models

import "time"

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Question string `json:"question"`
	Limit    int    `json:"limit,omitempty"`
}

// QueryResponse is the result of one pipeline run.
type QueryResponse struct {
	Status       string                   `json:"status"`
	Question     string                   `json:"question"`
	SQLQuery     string                   `json:"sql_query,omitempty"`
	Results      []map[string]interface{} `json:"results,omitempty"`
	Explanation  string                   `json:"explanation,omitempty"`
	RowCount     int                      `json:"row_count"`
	ErrorMessage string                   `json:"error_message,omitempty"`
	QueryType    string                   `json:"query_type,omitempty"`
}

// SuggestionsResponse lists example questions the service can answer.
type SuggestionsResponse struct {
	Status       string   `json:"status"`
	Suggestions  []string `json:"suggestions"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

// HealthResponse reports liveness of the service and its collaborators.
type HealthResponse struct {
	Status            string    `json:"status"`
	DatabaseConnected bool      `json:"database_connected"`
	LLMAvailable      bool      `json:"llm_available"`
	Timestamp         time.Time `json:"timestamp"`
}

// DatabaseStatusResponse reports connection state and schema information.
type DatabaseStatusResponse struct {
	Status   string                    `json:"status"`
	Database string                    `json:"database,omitempty"`
	Tables   map[string][]ColumnInfo   `json:"tables,omitempty"`
	Message  string                    `json:"message,omitempty"`
}

// ColumnInfo describes a single column from schema introspection.
type ColumnInfo struct {
	Field    string `json:"field"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// ErrorResponse is the structured error body for failed requests.
type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
