// cmd/tools/fields-export/main.go
//
// Dumps the semantic field registry as JSON, for documentation and for
// keeping downstream consumers in sync with the service's field meanings.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"stock-ai-service/pkg/semantics"
)

func main() {
	registry := semantics.NewRegistry()

	out, err := json.MarshalIndent(map[string]interface{}{
		"fields":       registry.All(),
		"trend_values": registry.TrendValues(),
	}, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
