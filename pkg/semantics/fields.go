// pkg/semantics/fields.go
package semantics

// trendValues is shared by the daily, weekly and monthly trend fields.
var trendValues = map[string]string{
	"0": "sideways (no clear trend)",
	"1": "uptrend (long position)",
	"2": "downtrend (short position)",
}

// defaultFieldDefinitions holds the built-in semantic dictionary for the
// stock database. Adding a field or a value meaning here is purely additive;
// classification and rendering never need to change.
func defaultFieldDefinitions() []FieldDefinition {
	return []FieldDefinition{
		// Trend fields
		{
			FieldName:      "TheTrendD",
			Type:           FieldTypeTrend,
			Description:    "Daily trend indicator",
			PossibleValues: trendValues,
			Table:          "stock_data",
		},
		{
			FieldName:      "TheTrendW",
			Type:           FieldTypeTrend,
			Description:    "Weekly trend indicator",
			PossibleValues: trendValues,
			Table:          "stock_data",
		},
		{
			FieldName:      "TheTrendM",
			Type:           FieldTypeTrend,
			Description:    "Monthly trend indicator",
			PossibleValues: trendValues,
			Table:          "stock_data",
		},

		// Price and volume fields
		{
			FieldName:   "Price",
			Type:        FieldTypePrice,
			Description: "Stock price",
			Unit:        "currency",
			Table:       "stock_data",
		},
		{
			FieldName:   "UpsDowns",
			Type:        FieldTypeVolume,
			Description: "Trading volume/activity",
			Unit:        "shares",
			Table:       "stock_data",
		},
		{
			FieldName:   "UpsDownsD",
			Type:        FieldTypeVolume,
			Description: "Daily trading volume",
			Unit:        "shares",
			Table:       "stock_data",
		},

		// Symbol and name fields
		{
			FieldName:   "Nrnum",
			Type:        FieldTypeSymbol,
			Description: "Stock identifier/symbol",
			Table:       "stock_data",
		},
		{
			FieldName:   "HebName",
			Type:        FieldTypeName,
			Description: "Stock name in Hebrew",
			Table:       "name_index",
		},
		{
			FieldName:   "EngName",
			Type:        FieldTypeName,
			Description: "Stock name in English",
			Table:       "name_index",
		},

		// Date field
		{
			FieldName:   "Date",
			Type:        FieldTypeDate,
			Description: "Trading date",
			Table:       "stock_data",
		},

		// Indicator fields
		{
			FieldName:   "MainSug",
			Type:        FieldTypeIndicator,
			Description: "Main suggestion/indicator",
			Table:       "stock_data",
		},
		{
			FieldName:   "SubSug",
			Type:        FieldTypeIndicator,
			Description: "Sub suggestion/indicator",
			Table:       "stock_data",
		},
		{
			FieldName:   "Index",
			Type:        FieldTypeIndicator,
			Description: "Market index value",
			Table:       "stock_data",
		},

		// Grade fields
		{
			FieldName:   "FinalGradeD",
			Type:        FieldTypeGrade,
			Description: "Final daily grade/rating",
			Table:       "stock_data",
		},
		{
			FieldName:   "FinalGradeW",
			Type:        FieldTypeGrade,
			Description: "Final weekly grade/rating",
			Table:       "stock_data",
		},
		{
			FieldName:   "FinalGradeM",
			Type:        FieldTypeGrade,
			Description: "Final monthly grade/rating",
			Table:       "stock_data",
		},
	}
}
