package main

import (
	"strings"

	"github.com/jadenpxrk/fastats/internal/summary"
)

// formatTable renders the header row and one tab-separated row per summary.
func formatTable(results []summary.Summary) string {
	var builder strings.Builder
	writeRow(&builder, summary.Header)
	for _, s := range results {
		writeRow(&builder, s.Fields())
	}
	return builder.String()
}

func writeRow(builder *strings.Builder, fields []string) {
	builder.WriteString(strings.Join(fields, "\t"))
	builder.WriteString("\n")
}
