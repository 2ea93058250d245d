package query

import (
	"context"

	stderrors "stock-ai-service/internal/common/errors"
	"stock-ai-service/internal/models"
)

const tableColumnsSQL = `
	SELECT column_name, data_type, is_nullable
	FROM information_schema.columns
	WHERE table_name = $1
	ORDER BY ordinal_position`

// TableInfo describes a table's columns from the information schema.
// Unknown tables return an empty slice, not an error.
func (e *Executor) TableInfo(ctx context.Context, table string) ([]models.ColumnInfo, error) {
	rows, err := e.client.Query(ctx, tableColumnsSQL, table)
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("schema_inspection", err)
	}
	defer rows.Close()

	columns := make([]models.ColumnInfo, 0)
	for rows.Next() {
		var col models.ColumnInfo
		var nullable string
		if err := rows.Scan(&col.Field, &col.Type, &nullable); err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("schema_inspection", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("schema_inspection", err)
	}
	return columns, nil
}
