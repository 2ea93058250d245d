// pkg/semantics/registry.go
package semantics

import "fmt"

// Registry is the read-only field semantics dictionary. It is built once at
// startup and is safe for unsynchronized concurrent reads.
type Registry struct {
	fields map[string]FieldDefinition
	order  []string
}

// NewRegistry builds a registry from the built-in field definitions.
func NewRegistry() *Registry {
	return NewRegistryFrom(defaultFieldDefinitions())
}

// NewRegistryFrom builds a registry from an explicit definition list.
// Later definitions with the same field name override earlier ones.
func NewRegistryFrom(defs []FieldDefinition) *Registry {
	r := &Registry{fields: make(map[string]FieldDefinition, len(defs))}
	for _, def := range defs {
		if _, exists := r.fields[def.FieldName]; !exists {
			r.order = append(r.order, def.FieldName)
		}
		r.fields[def.FieldName] = def
	}
	return r
}

// Lookup returns the definition for a field name.
func (r *Registry) Lookup(fieldName string) (FieldDefinition, bool) {
	def, ok := r.fields[fieldName]
	return def, ok
}

// Interpret maps a raw field value to its human-readable meaning. Unknown
// fields and unmapped values fall back to the raw value; it never fails.
func (r *Registry) Interpret(fieldName string, value interface{}) string {
	raw := fmt.Sprintf("%v", value)
	def, ok := r.fields[fieldName]
	if !ok || def.PossibleValues == nil {
		return raw
	}
	if label, ok := def.PossibleValues[raw]; ok {
		return label
	}
	return raw
}

// FieldsByType returns all definitions of the given type, in declaration order.
func (r *Registry) FieldsByType(t FieldType) []FieldDefinition {
	var out []FieldDefinition
	for _, name := range r.order {
		if def := r.fields[name]; def.Type == t {
			out = append(out, def)
		}
	}
	return out
}

// All returns every definition keyed by field name.
func (r *Registry) All() map[string]FieldDefinition {
	out := make(map[string]FieldDefinition, len(r.fields))
	for name, def := range r.fields {
		out[name] = def
	}
	return out
}

// TrendValues returns the trend value meanings (value code to label).
func (r *Registry) TrendValues() map[string]string {
	def, ok := r.fields["TheTrendD"]
	if !ok || def.PossibleValues == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(def.PossibleValues))
	for k, v := range def.PossibleValues {
		out[k] = v
	}
	return out
}
