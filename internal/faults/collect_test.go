package faults

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/revreport/internal/codehost"
	"github.com/joescharf/revreport/internal/links"
	"github.com/joescharf/revreport/internal/models"
)

// fakeHost implements codehost.Client for testing.
type fakeHost struct {
	prs        []codehost.PullRequest
	activities map[int64][]models.Activity
	listErr    error
	actErr     error
	states     []string
}

func (f *fakeHost) PullRequests(ctx context.Context, project, repo, state string) ([]codehost.PullRequest, error) {
	f.states = append(f.states, state)
	return f.prs, f.listErr
}

func (f *fakeHost) Activities(ctx context.Context, project, repo string, id int64) ([]models.Activity, error) {
	if f.actErr != nil {
		return nil, f.actErr
	}
	return f.activities[id], nil
}

// fakeLookup implements links.IssueLookup for testing.
type fakeLookup map[string][]string

func (f fakeLookup) IssueComponents(ctx context.Context, key string) ([]string, error) {
	if c, ok := f[key]; ok {
		return c, nil
	}
	return nil, errors.New("issue does not exist")
}

func comment(text string) models.Activity {
	return models.Activity{Action: codehost.ActionCommented, Comment: &models.ActivityComment{Text: text}}
}

func day(d int) time.Time { return time.Date(2026, 10, d, 12, 0, 0, 0, time.UTC) }

func newTestCollector(h *fakeHost, lookup links.IssueLookup) *Collector {
	return NewCollector(h, links.NewResolver(lookup, zerolog.Nop()), zerolog.Nop())
}

func TestReviewRequests_Builds(t *testing.T) {
	h := &fakeHost{
		prs: []codehost.PullRequest{{
			ID: 1, Title: "t", Author: "Ann", State: models.ReviewStateMerged, CreatedAt: day(3),
			Description: "Tests: https://jira.example.com/browse/QA-1 https://jira.example.com/browse/QA-2",
		}},
		activities: map[int64][]models.Activity{1: {
			comment("[hx] missing null check"),
			{Action: "APPROVED"},
			comment("looks good"),
		}},
	}
	c := newTestCollector(h, fakeLookup{"QA-2": {"API", "UI"}})

	rrs, err := c.ReviewRequests(context.Background(), "PRJ", "core", Filter{})
	require.NoError(t, err)
	require.Len(t, rrs, 1)

	rr := rrs[0]
	assert.Equal(t, "core", rr.Repository)
	assert.Equal(t, "PRJ", rr.Project)
	assert.Len(t, rr.Activities, 3)
	assert.Equal(t, []string{"[hx] missing null check", "looks good"}, rr.Comments)
	assert.Equal(t, 2, rr.TestsCount)
	assert.Len(t, rr.IssueURLs, 2)
	assert.Equal(t, "API,UI", rr.Component)
	assert.Equal(t, []string{codehost.StateAll}, h.states)
}

func TestReviewRequests_FiltersByDate(t *testing.T) {
	h := &fakeHost{prs: []codehost.PullRequest{
		{ID: 1, CreatedAt: day(1)},
		{ID: 2, CreatedAt: day(5)},
		{ID: 3, CreatedAt: day(10)},
	}}
	c := newTestCollector(h, nil)

	rrs, err := c.ReviewRequests(context.Background(), "PRJ", "core",
		Filter{State: "MERGED", Since: day(5), Until: day(10)})
	require.NoError(t, err)
	require.Len(t, rrs, 1)
	assert.Equal(t, int64(2), rrs[0].ID)
	assert.Equal(t, models.NoComponent, rrs[0].Component)
	assert.Equal(t, []string{"MERGED"}, h.states)
}

func TestReviewRequests_ErrorsPropagate(t *testing.T) {
	c := newTestCollector(&fakeHost{listErr: errors.New("list failed")}, nil)
	_, err := c.ReviewRequests(context.Background(), "PRJ", "core", Filter{})
	assert.ErrorContains(t, err, "list failed")

	h := &fakeHost{prs: []codehost.PullRequest{{ID: 1}}, actErr: errors.New("activity failed")}
	_, err = newTestCollector(h, nil).ReviewRequests(context.Background(), "PRJ", "core", Filter{})
	assert.ErrorContains(t, err, "activity failed")
}

func TestAggregate(t *testing.T) {
	rrs := []*models.ReviewRequest{
		{Author: "Bob", Repository: "web", Component: models.NoComponent, Comments: []string{"[lc] typo"}},
		{Author: "Ann", Repository: "core", Component: models.NoComponent, TestsCount: 1,
			Comments: []string{"[hx] a", "nit"}},
		{Author: "Ann", Repository: "core", Component: "API", TestsCount: 2,
			Comments: []string{"[mr] b"}},
		{Author: "Ann", Repository: "core", Component: "UI"},
		{Author: "Ann", Repository: "web"},
	}

	aggs := Aggregate(rrs)
	require.Len(t, aggs, 3)

	ann := aggs[0]
	assert.Equal(t, "Ann", ann.Author)
	assert.Equal(t, "core", ann.Repository)
	assert.Equal(t, 3, ann.PRCount)
	assert.Equal(t, 3, ann.TestsCount)
	assert.Equal(t, "API", ann.Component, "first real component wins")
	assert.Equal(t, 1, ann.High)
	assert.Equal(t, 1, ann.Medium)
	assert.Equal(t, 2, ann.Faults)
	assert.Equal(t, 1, ann.Uncategorized)
	assert.Equal(t, 1, ann.Categories.HX)
	assert.Equal(t, 1, ann.Categories.MR)

	assert.Equal(t, "Ann", aggs[1].Author)
	assert.Equal(t, "web", aggs[1].Repository)
	assert.Equal(t, models.NoComponent, aggs[1].Component)
	assert.Equal(t, "Bob", aggs[2].Author)
	assert.Equal(t, 1, aggs[2].Low)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}
