package nlq

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultHistoryDays is used when a history question names no day span.
const DefaultHistoryDays = 7

var (
	// Keyword-prefixed forms take precedence over bare digit runs, so a
	// question like "stock 9001 over 30 days" resolves the symbol from the
	// keyword and not from the day count.
	symbolPatterns = []*regexp.Regexp{
		regexp.MustCompile(`symbol\s+(\d+)`),
		regexp.MustCompile(`stock\s+(\d+)`),
		regexp.MustCompile(`(\d{4,})`),
	}

	daysPattern = regexp.MustCompile(`(\d{1,3})\s*(?:trading\s+)?days?\b`)
)

// Entities holds the values extracted from a question, keyed by the
// placeholder names the SQL templates use.
type Entities map[string]string

// Extractor pulls symbols and day spans out of question text.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractSymbol finds a numeric stock symbol. Keyword-prefixed forms
// ("symbol 230011", "stock 230011") are tried first; a bare run of four or
// more digits is accepted last. Returns ok=false when nothing matches.
func (e *Extractor) ExtractSymbol(question string) (string, bool) {
	lower := strings.ToLower(question)
	for _, pattern := range symbolPatterns {
		if m := pattern.FindStringSubmatch(lower); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ExtractDays finds a day span written adjacent to the word "days"
// ("last 30 days"). The default is returned when no span is present or the
// captured value is not a positive integer.
func (e *Extractor) ExtractDays(question string) int {
	m := daysPattern.FindStringSubmatch(strings.ToLower(question))
	if m == nil {
		return DefaultHistoryDays
	}
	days, err := strconv.Atoi(m[1])
	if err != nil || days <= 0 {
		return DefaultHistoryDays
	}
	return days
}

// Extract gathers every entity the SQL templates can reference. Absent
// symbols are simply omitted from the map; the resolver decides whether
// that is fatal for the chosen template.
func (e *Extractor) Extract(question string) Entities {
	entities := Entities{
		"days": strconv.Itoa(e.ExtractDays(question)),
	}
	if symbol, ok := e.ExtractSymbol(question); ok {
		entities["symbol"] = symbol
	}
	return entities
}
