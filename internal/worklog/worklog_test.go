package worklog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/revreport/internal/models"
)

// fakeTracker implements Tracker for testing.
type fakeTracker struct {
	issues    map[string][]models.Issue
	worklogs  map[string][]models.Worklog
	searchErr error
	wlErr     error
	queries   []string
}

func (f *fakeTracker) Search(ctx context.Context, jql string) ([]models.Issue, error) {
	f.queries = append(f.queries, jql)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.issues[jql], nil
}

func (f *fakeTracker) Worklogs(ctx context.Context, key string) ([]models.Worklog, error) {
	if f.wlErr != nil {
		return nil, f.wlErr
	}
	return f.worklogs[key], nil
}

type upper struct{}

func (upper) Normalize(q string) string { return strings.ToUpper(q) }

func TestCollect(t *testing.T) {
	ft := &fakeTracker{
		issues: map[string][]models.Issue{
			"project = a": {{Key: "A-1"}, {Key: "A-2"}},
			"project = b": {{Key: "B-1"}},
		},
		worklogs: map[string][]models.Worklog{
			"A-1": {{Author: "ann", TimeSpentSeconds: 3600}},
			"B-1": {{Author: "bob", TimeSpentSeconds: 60}, {Author: "bob", TimeSpentSeconds: 60}},
		},
	}
	agg := NewAggregator(ft, nil, zerolog.Nop())

	res, err := agg.Collect(context.Background(), "project = a", "project = b")
	require.NoError(t, err)

	require.Len(t, res.Queries, 2)
	assert.Equal(t, "project = a", res.Queries[0].Query)
	assert.Equal(t, 3, res.IssueCount())

	a := res.Queries[0].Issues
	assert.Len(t, a[0].Worklogs, 1)
	assert.Empty(t, a[1].Worklogs)

	b := res.Queries[1].Issues
	assert.Equal(t, "project = b", res.Queries[1].Query)
	assert.Equal(t, 120, b[0].TimeSpentSeconds())
}

func TestCollect_NormalizesQuery(t *testing.T) {
	ft := &fakeTracker{}
	agg := NewAggregator(ft, upper{}, zerolog.Nop())

	res, err := agg.Collect(context.Background(), "project = a")
	require.NoError(t, err)
	assert.Equal(t, []string{"PROJECT = A"}, ft.queries)
	assert.Equal(t, "PROJECT = A", res.Queries[0].Query)
}

func TestCollect_SearchErrorPropagates(t *testing.T) {
	ft := &fakeTracker{searchErr: errors.New("503")}
	_, err := NewAggregator(ft, nil, zerolog.Nop()).Collect(context.Background(), "x")
	assert.ErrorContains(t, err, "503")
}

func TestCollect_WorklogErrorPropagates(t *testing.T) {
	ft := &fakeTracker{
		issues: map[string][]models.Issue{"x": {{Key: "X-1"}}},
		wlErr:  errors.New("timeout"),
	}
	_, err := NewAggregator(ft, nil, zerolog.Nop()).Collect(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collect worklogs")
}
