package tracker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJira(t *testing.T, h http.Handler) *JiraClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewJiraClient(Config{URL: srv.URL, Username: "u", Password: "p", Timeout: 5 * time.Second}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewJiraClient_EmptyURL(t *testing.T) {
	_, err := NewJiraClient(Config{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestSearch_Paginates(t *testing.T) {
	var jqls []string
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/2/search", func(w http.ResponseWriter, r *http.Request) {
		user, _, _ := r.BasicAuth()
		assert.Equal(t, "u", user)
		jqls = append(jqls, r.URL.Query().Get("jql"))

		start, _ := strconv.Atoi(r.URL.Query().Get("startAt"))
		var issues []map[string]any
		if start == 0 {
			issues = []map[string]any{
				{"key": "QA-1", "fields": map[string]any{
					"summary":    "first",
					"status":     map[string]any{"name": "Done"},
					"assignee":   map[string]any{"displayName": "Ann"},
					"components": []map[string]any{{"name": "API"}},
				}},
				{"key": "QA-2", "fields": map[string]any{"summary": "second"}},
			}
		} else {
			issues = []map[string]any{{"key": "QA-3", "fields": map[string]any{"summary": "third"}}}
		}
		writeJSON(w, map[string]any{"startAt": start, "maxResults": 2, "total": 3, "issues": issues})
	})
	c := newTestJira(t, mux)

	issues, err := c.Search(context.Background(), "project = QA")
	require.NoError(t, err)
	require.Len(t, issues, 3)

	assert.Equal(t, "QA-1", issues[0].Key)
	assert.Equal(t, "first", issues[0].Summary)
	assert.Equal(t, "Done", issues[0].Status)
	assert.Equal(t, "Ann", issues[0].Assignee)
	assert.Equal(t, []string{"API"}, issues[0].Components)
	assert.Equal(t, "QA-3", issues[2].Key)
	assert.Equal(t, []string{"project = QA", "project = QA"}, jqls)
}

func TestSearch_Error(t *testing.T) {
	c := newTestJira(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errorMessages":["bad jql"]}`, http.StatusBadRequest)
	}))

	_, err := c.Search(context.Background(), "nonsense ===")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jira search")
}

func TestWorklogs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/2/issue/QA-1/worklog", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"startAt": 0, "maxResults": 2, "total": 2,
			"worklogs": []map[string]any{
				{"id": "10", "author": map[string]any{"displayName": "Ann"}, "comment": "review",
					"started": "2026-10-01T09:00:00.000+0000", "timeSpentSeconds": 5400},
				{"id": "11", "timeSpentSeconds": 600},
			},
		})
	})
	c := newTestJira(t, mux)

	wls, err := c.Worklogs(context.Background(), "QA-1")
	require.NoError(t, err)
	require.Len(t, wls, 2)

	assert.Equal(t, "Ann", wls[0].Author)
	assert.Equal(t, 5400, wls[0].TimeSpentSeconds)
	assert.Equal(t, "review", wls[0].Comment)
	assert.Equal(t, 2026, wls[0].Started.Year())
	assert.Empty(t, wls[1].Author)
	assert.True(t, wls[1].Started.IsZero())
}

func TestIssueComponents(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/2/issue/QA-7", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "components", r.URL.Query().Get("fields"))
		writeJSON(w, map[string]any{"key": "QA-7", "fields": map[string]any{
			"components": []map[string]any{{"name": "API"}, {"name": "UI"}},
		}})
	})
	mux.HandleFunc("/rest/api/2/issue/QA-404", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errorMessages":["Issue does not exist"]}`, http.StatusNotFound)
	})
	c := newTestJira(t, mux)

	names, err := c.IssueComponents(context.Background(), "QA-7")
	require.NoError(t, err)
	assert.Equal(t, []string{"API", "UI"}, names)

	_, err = c.IssueComponents(context.Background(), "QA-404")
	assert.Error(t, err)
}
