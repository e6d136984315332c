package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/joescharf/revreport/internal/models"
	"github.com/joescharf/revreport/internal/output"
)

// Formats lists the accepted Render formats.
var Formats = []string{"table", "json", "csv", "markdown"}

// FaultSummary is the JSON form of an author aggregate.
type FaultSummary struct {
	Repository    string         `json:"repository"`
	Author        string         `json:"author"`
	Component     string         `json:"component"`
	PRs           int            `json:"prs"`
	Tests         int            `json:"tests"`
	Faults        int            `json:"faults"`
	High          int            `json:"high"`
	Medium        int            `json:"medium"`
	Low           int            `json:"low"`
	Categories    map[string]int `json:"categories"`
	Uncategorized int            `json:"uncategorized"`
}

// Summaries converts aggregates to their JSON form.
func Summaries(aggs []*models.AuthorAggregate) []FaultSummary {
	out := make([]FaultSummary, 0, len(aggs))
	for _, a := range aggs {
		cats := make(map[string]int, len(models.Categories))
		for _, tag := range models.Categories {
			cats[tag] = a.Categories.Get(tag)
		}
		out = append(out, FaultSummary{
			Repository:    a.Repository,
			Author:        a.Author,
			Component:     a.Component,
			PRs:           a.PRCount,
			Tests:         a.TestsCount,
			Faults:        a.Faults,
			High:          a.High,
			Medium:        a.Medium,
			Low:           a.Low,
			Categories:    cats,
			Uncategorized: a.Uncategorized,
		})
	}
	return out
}

// Render prints the fault summary to ui.Out in the given format.
func Render(ui *output.UI, format string, aggs []*models.AuthorAggregate) error {
	switch format {
	case "table":
		if len(aggs) == 0 {
			ui.Info("No pull requests matched.")
			return nil
		}
		table := ui.Table([]string{"Repository", "Author", "Component", "PRs", "Tests", "Faults", "High", "Medium", "Low", "No category"})
		for _, a := range aggs {
			table.Append([]string{
				a.Repository,
				output.Cyan(a.Author),
				a.Component,
				strconv.Itoa(a.PRCount),
				strconv.Itoa(a.TestsCount),
				strconv.Itoa(a.Faults),
				output.SeverityCount(models.SeverityHigh, a.High),
				output.SeverityCount(models.SeverityMedium, a.Medium),
				output.SeverityCount(models.SeverityLow, a.Low),
				strconv.Itoa(a.Uncategorized),
			})
		}
		return table.Render()
	case "json":
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(Summaries(aggs))
	case "csv":
		w := csv.NewWriter(ui.Out)
		_ = w.Write(FaultHeader())
		for _, row := range FaultRows(aggs) {
			_ = w.Write(Strings(row))
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintln(ui.Out, "# Review Faults")
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, "| Repository | Author | Component | PRs | Faults | High | Medium | Low | No category |")
		fmt.Fprintln(ui.Out, "|------------|--------|-----------|-----|--------|------|--------|-----|-------------|")
		for _, a := range aggs {
			fmt.Fprintf(ui.Out, "| %s | %s | %s | %d | %d | %d | %d | %d | %d |\n",
				a.Repository, a.Author, a.Component, a.PRCount, a.Faults, a.High, a.Medium, a.Low, a.Uncategorized)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s (use: %s)", format, strings.Join(Formats, ", "))
	}
}
