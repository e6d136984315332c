// Package report shapes collected data into tabular rows and writes them out.
package report

import (
	"strconv"
	"strings"

	"github.com/joescharf/revreport/internal/models"
	"github.com/joescharf/revreport/internal/worklog"
)

// WorklogHeader is the header row of the worklog sheet.
var WorklogHeader = []string{"Query", "Key", "Summary", "Status", "Assignee", "Components", "Logged by", "Hours", "Minutes", "Entries"}

// FaultHeader returns the header row of the fault sheet.
func FaultHeader() []string {
	h := []string{"Repository", "Author", "Component", "PRs", "Tests", "Faults", "High", "Medium", "Low"}
	h = append(h, models.Categories...)
	return append(h, "No category")
}

// WorklogRows returns one row per issue followed by one row per query text.
// sep is the decimal separator of the hours column.
func WorklogRows(res worklog.Result, sep string) [][]any {
	var rows [][]any
	for _, q := range res.Queries {
		for i := range q.Issues {
			is := &q.Issues[i]
			secs := is.TimeSpentSeconds()
			rows = append(rows, []any{
				q.Query,
				is.Key,
				is.Summary,
				is.Status,
				is.Assignee,
				strings.Join(is.Components, ", "),
				strings.Join(is.WorklogAuthors(), ", "),
				worklog.SecondsToHoursMinutes(secs).Display(sep),
				worklog.SecondsToMinutes(secs),
				len(is.Worklogs),
			})
		}
	}
	if len(res.Queries) > 0 {
		rows = append(rows, []any{})
	}
	for _, q := range res.Queries {
		rows = append(rows, []any{"JQL", q.Query})
	}
	return rows
}

// FaultRows returns one row per author aggregate, in FaultHeader order.
func FaultRows(aggs []*models.AuthorAggregate) [][]any {
	rows := make([][]any, 0, len(aggs))
	for _, a := range aggs {
		row := []any{a.Repository, a.Author, a.Component, a.PRCount, a.TestsCount, a.Faults, a.High, a.Medium, a.Low}
		for _, tag := range models.Categories {
			row = append(row, a.Categories.Get(tag))
		}
		rows = append(rows, append(row, a.Uncategorized))
	}
	return rows
}

// Strings renders a row for text output.
func Strings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch x := v.(type) {
		case string:
			out[i] = x
		case int:
			out[i] = strconv.Itoa(x)
		default:
			out[i] = ""
		}
	}
	return out
}
