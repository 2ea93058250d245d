// pkg/semantics/schema.go
package semantics

// FieldType categorizes database fields for semantic understanding.
type FieldType string

const (
	FieldTypeTrend     FieldType = "trend"
	FieldTypePrice     FieldType = "price"
	FieldTypeVolume    FieldType = "volume"
	FieldTypeSymbol    FieldType = "symbol"
	FieldTypeDate      FieldType = "date"
	FieldTypeIndicator FieldType = "indicator"
	FieldTypeGrade     FieldType = "grade"
	FieldTypeName      FieldType = "name"
)

// FieldDefinition describes a database field and the meaning of its values.
type FieldDefinition struct {
	FieldName      string            `json:"field_name"`
	Type           FieldType         `json:"type"`
	Description    string            `json:"description"`
	PossibleValues map[string]string `json:"possible_values,omitempty"`
	Unit           string            `json:"unit,omitempty"`
	Table          string            `json:"table,omitempty"`
}
