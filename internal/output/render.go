package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	prettytext "github.com/jedib0t/go-pretty/v6/text"

	"github.com/errshape/errshape/internal/app"
	"github.com/errshape/errshape/internal/record"
)

const (
	maxValueWidth   = 100
	maxHeadingWidth = 120
	maxCauseSnippet = 400
)

func RenderRecordHuman(rec record.Record) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: maxValueWidth, WidthMaxEnforcer: prettytext.Trim}})
	tw.AppendRow(table.Row{"Kind", string(rec.Kind)})
	tw.AppendRow(table.Row{"Message", fallback(rec.Message)})
	if rec.Description != "" {
		tw.AppendRow(table.Row{"Description", rec.Description})
	}
	if rec.HTTPCode != "" {
		tw.AppendRow(table.Row{"HTTP Code", rec.HTTPCode})
	}
	tw.AppendRow(table.Row{"Correlation", rec.Correlation.String()})
	tw.AppendRow(table.Row{"Timestamp", rec.Timestamp.UTC().Format(time.RFC3339)})

	heading := "Error: " + prettytext.Trim(fallback(rec.Message), maxHeadingWidth)
	rendered := heading + "\n\n" + strings.TrimRight(tw.Render(), "\n")

	if snippet := causeSnippet(rec.Cause); snippet != "" {
		rendered += "\n\ncause: " + snippet
	}

	return rendered
}

func RenderProbeHuman(report app.ProbeReport) string {
	status := fmt.Sprintf("%s responded %d in %dms", report.URL, report.StatusCode, report.ElapsedMS)
	if report.Healthy {
		return "UP " + status
	}

	rendered := "DOWN " + status
	if report.Record != nil {
		rendered += "\n\n" + RenderRecordHuman(*report.Record)
	}

	return rendered
}

func RenderJSON(value any) (string, error) {
	body, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json output: %w", err)
	}

	return string(body), nil
}

func causeSnippet(cause any) string {
	switch typed := cause.(type) {
	case nil:
		return ""
	case string:
		return prettytext.Trim(typed, maxCauseSnippet)
	case error:
		return prettytext.Trim(typed.Error(), maxCauseSnippet)
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return ""
		}
		return prettytext.Trim(string(encoded), maxCauseSnippet)
	}
}

func fallback(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "unknown"
	}

	return trimmed
}
