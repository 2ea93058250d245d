package trend

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-ai-service/internal/common/database"
	stderrors "stock-ai-service/internal/common/errors"
	"stock-ai-service/internal/common/logger"
	"stock-ai-service/pkg/semantics"
)

var snapshotColumns = []string{"Nrnum", "Date", "TheTrendD", "Price", "EngName", "HebName"}

// day mirrors lib/pq, which scans DATE columns as time.Time.
func day(value string) time.Time {
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	client := &database.PostgresClient{DB: db}
	return NewService(client, semantics.NewRegistry(), logger.NewTestLogger(t)), mock
}

func TestCurrent(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery(currentSQL).
		WithArgs("230011").
		WillReturnRows(sqlmock.NewRows(snapshotColumns).
			AddRow(230011, day("2025-07-27"), 1, 634.6, "Bezeq", "בזק"))

	snapshot, err := service.Current(context.Background(), "230011")

	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, "230011", snapshot.Symbol)
	assert.Equal(t, "Bezeq", snapshot.StockName)
	assert.Equal(t, "2025-07-27", snapshot.Date)
	assert.Equal(t, "1", snapshot.TrendValue)
	assert.Equal(t, "uptrend (long position)", snapshot.TrendLabel)
	assert.Equal(t, 634.6, snapshot.Price)
}

func TestCurrentUnknownSymbol(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery(currentSQL).
		WithArgs("999999").
		WillReturnRows(sqlmock.NewRows(snapshotColumns))

	snapshot, err := service.Current(context.Background(), "999999")

	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestCurrentInvalidSymbol(t *testing.T) {
	service, _ := newTestService(t)

	tests := []string{"", "abc", "230011; DROP TABLE stock_data"}
	for _, symbol := range tests {
		_, err := service.Current(context.Background(), symbol)

		require.Error(t, err)
		var stdErr *stderrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, stderrors.ErrCodeInvalidInput, stdErr.Code)
	}
}

func TestHistory(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery(historySQL).
		WithArgs("230011", 5).
		WillReturnRows(sqlmock.NewRows(snapshotColumns).
			AddRow(230011, day("2025-07-25"), 1, 634.6, "Bezeq", "").
			AddRow(230011, day("2025-07-24"), 1, 630.0, "Bezeq", "").
			AddRow(230011, day("2025-07-23"), 2, 628.0, "Bezeq", "").
			AddRow(230011, day("2025-07-22"), 0, 629.0, "Bezeq", "").
			AddRow(230011, day("2025-07-21"), 1, 627.0, "Bezeq", ""))

	history, err := service.History(context.Background(), "230011", 5)

	require.NoError(t, err)
	require.NotNil(t, history)
	assert.Equal(t, 5, history.Days)
	assert.Equal(t, map[string]int{
		"uptrend (long position)":    3,
		"downtrend (short position)": 1,
		"sideways (no clear trend)":  1,
	}, history.Counts)
}

func TestChanges(t *testing.T) {
	service, mock := newTestService(t)

	// Newest first, as the query orders them.
	mock.ExpectQuery(historySQL).
		WithArgs("230011", 4).
		WillReturnRows(sqlmock.NewRows(snapshotColumns).
			AddRow(230011, day("2025-07-25"), 2, 628.0, "Bezeq", "").
			AddRow(230011, day("2025-07-24"), 1, 630.0, "Bezeq", "").
			AddRow(230011, day("2025-07-23"), 1, 629.0, "Bezeq", "").
			AddRow(230011, day("2025-07-22"), 0, 627.0, "Bezeq", ""))

	transitions, err := service.Changes(context.Background(), "230011", 4, "", "")

	require.NoError(t, err)
	require.Len(t, transitions, 2)

	assert.Equal(t, "2025-07-25", transitions[0].Date)
	assert.Equal(t, "1", transitions[0].FromValue)
	assert.Equal(t, "uptrend (long position)", transitions[0].FromLabel)
	assert.Equal(t, "2", transitions[0].ToValue)
	assert.Equal(t, "downtrend (short position)", transitions[0].ToLabel)

	assert.Equal(t, "2025-07-23", transitions[1].Date)
	assert.Equal(t, "0", transitions[1].FromValue)
	assert.Equal(t, "1", transitions[1].ToValue)
}

func TestChangesFiltered(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery(historySQL).
		WithArgs("230011", 4).
		WillReturnRows(sqlmock.NewRows(snapshotColumns).
			AddRow(230011, day("2025-07-25"), 2, 628.0, "Bezeq", "").
			AddRow(230011, day("2025-07-24"), 1, 630.0, "Bezeq", "").
			AddRow(230011, day("2025-07-23"), 1, 629.0, "Bezeq", "").
			AddRow(230011, day("2025-07-22"), 0, 627.0, "Bezeq", ""))

	// Only the uptrend-to-downtrend move survives the filter.
	transitions, err := service.Changes(context.Background(), "230011", 4, "1", "2")

	require.NoError(t, err)
	require.Len(t, transitions, 1)
	assert.Equal(t, "2025-07-25", transitions[0].Date)
	assert.Equal(t, "1", transitions[0].FromValue)
	assert.Equal(t, "2", transitions[0].ToValue)
}

func TestChangesRejectsNonPositiveDays(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Changes(context.Background(), "230011", 0, "", "")

	require.Error(t, err)
	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeInvalidInput, stdErr.Code)
}

func TestAnalysis(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery(currentSQL).
		WithArgs("230011").
		WillReturnRows(sqlmock.NewRows(snapshotColumns).
			AddRow(230011, day("2025-07-25"), 1, 634.6, "Bezeq", ""))
	mock.ExpectQuery(historySQL).
		WithArgs("230011", 3).
		WillReturnRows(sqlmock.NewRows(snapshotColumns).
			AddRow(230011, day("2025-07-25"), 1, 634.6, "Bezeq", "").
			AddRow(230011, day("2025-07-24"), 2, 630.0, "Bezeq", "").
			AddRow(230011, day("2025-07-23"), 2, 629.0, "Bezeq", ""))
	mock.ExpectQuery(historySQL).
		WithArgs("230011", 3).
		WillReturnRows(sqlmock.NewRows(snapshotColumns).
			AddRow(230011, day("2025-07-25"), 1, 634.6, "Bezeq", "").
			AddRow(230011, day("2025-07-24"), 2, 630.0, "Bezeq", "").
			AddRow(230011, day("2025-07-23"), 2, 629.0, "Bezeq", ""))

	analysis, err := service.Analysis(context.Background(), "230011", 3)

	require.NoError(t, err)
	require.NotNil(t, analysis)
	assert.Equal(t, "success", analysis.Status)
	require.NotNil(t, analysis.Current)
	assert.Equal(t, "uptrend (long position)", analysis.Current.TrendLabel)
	require.NotNil(t, analysis.History)
	require.Len(t, analysis.Transitions, 1)
	assert.Contains(t, analysis.Explanation, "Bezeq")
	assert.Contains(t, analysis.Explanation, "1 trend change(s)")
}

func TestAnalysisUnknownSymbol(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery(currentSQL).
		WithArgs("999999").
		WillReturnRows(sqlmock.NewRows(snapshotColumns))

	analysis, err := service.Analysis(context.Background(), "999999", 7)

	require.NoError(t, err)
	assert.Nil(t, analysis)
}
