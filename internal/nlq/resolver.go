package nlq

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMissingEntity signals that a template placeholder had no extracted
// value. Callers treat this as fatal for the semantic path rather than
// falling through to the LLM with a half-resolved query.
var ErrMissingEntity = errors.New("MISSING_ENTITY")

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// Resolver substitutes extracted entities into SQL templates.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve replaces every {placeholder} in the rule's template with its
// entity value. Any placeholder without a value aborts resolution with
// ErrMissingEntity; a partially substituted template is never returned.
func (r *Resolver) Resolve(rule IntentRule, entities Entities) (string, error) {
	var missing string
	resolved := placeholderPattern.ReplaceAllStringFunc(rule.SQLTemplate, func(match string) string {
		name := match[1 : len(match)-1]
		value, ok := entities[name]
		if !ok || value == "" {
			if missing == "" {
				missing = name
			}
			return match
		}
		return value
	})
	if missing != "" {
		return "", fmt.Errorf("%w: placeholder %q unresolved for intent %s", ErrMissingEntity, missing, rule.Intent)
	}
	return strings.TrimSpace(resolved), nil
}
