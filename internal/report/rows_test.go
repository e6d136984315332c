package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/revreport/internal/models"
	"github.com/joescharf/revreport/internal/worklog"
)

func TestWorklogRows(t *testing.T) {
	res := worklog.Result{Queries: []worklog.QueryResult{{
		Query: "project = QA",
		Issues: []models.Issue{
			{Key: "QA-1", Summary: "login", Status: "Done", Assignee: "Ann", Components: []string{"API", "UI"}, Worklogs: []models.Worklog{
				{Author: "Ann", TimeSpentSeconds: 3600},
				{Author: "Bob", TimeSpentSeconds: 1800},
			}},
			{Key: "QA-2", Summary: "logout"},
		},
	}}}

	rows := WorklogRows(res, ",")
	require.Len(t, rows, 4)

	assert.Equal(t, []any{"project = QA", "QA-1", "login", "Done", "Ann", "API, UI", "Ann, Bob", "1,5", 90, 2}, rows[0])
	assert.Equal(t, []any{"project = QA", "QA-2", "logout", "", "", "", "", "0", 0, 0}, rows[1])
	assert.Empty(t, rows[2])
	assert.Equal(t, []any{"JQL", "project = QA"}, rows[3])
	assert.Len(t, rows[0], len(WorklogHeader))
}

func TestWorklogRows_Empty(t *testing.T) {
	assert.Empty(t, WorklogRows(worklog.Result{}, ","))
}

func TestFaultRows(t *testing.T) {
	a := models.NewAuthorAggregate("Ann", "core")
	a.PRCount = 2
	a.TestsCount = 3
	a.High, a.Low, a.Faults = 1, 1, 2
	a.Categories.HX = 1
	a.Categories.LC = 1
	a.Uncategorized = 4

	rows := FaultRows([]*models.AuthorAggregate{a})
	require.Len(t, rows, 1)

	header := FaultHeader()
	require.Len(t, rows[0], len(header))

	byCol := make(map[string]any)
	for i, h := range header {
		byCol[h] = rows[0][i]
	}
	assert.Equal(t, "core", byCol["Repository"])
	assert.Equal(t, models.NoComponent, byCol["Component"])
	assert.Equal(t, 2, byCol["Faults"])
	assert.Equal(t, 1, byCol["hx"])
	assert.Equal(t, 1, byCol["lc"])
	assert.Equal(t, 0, byCol["mr"])
	assert.Equal(t, 4, byCol["No category"])
}

func TestStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "7", ""}, Strings([]any{"a", 7, 1.5}))
}
