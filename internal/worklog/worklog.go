// Package worklog collects the time logged against issues matched by JQL.
package worklog

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/joescharf/revreport/internal/models"
)

// Tracker is the subset of the issue tracker used to collect worklogs.
type Tracker interface {
	Search(ctx context.Context, jql string) ([]models.Issue, error)
	Worklogs(ctx context.Context, key string) ([]models.Worklog, error)
}

// Normalizer rewrites user-supplied query text before it is sent.
type Normalizer interface {
	Normalize(q string) string
}

type identity struct{}

func (identity) Normalize(q string) string { return q }

// QueryResult is the set of issues matched by one query.
type QueryResult struct {
	Query  string
	Issues []models.Issue
}

// Result holds query results in the order the queries were given.
type Result struct {
	Queries []QueryResult
}

// IssueCount returns the number of issues across all queries.
func (r Result) IssueCount() int {
	n := 0
	for _, q := range r.Queries {
		n += len(q.Issues)
	}
	return n
}

// Aggregator fetches issues and their worklogs.
type Aggregator struct {
	tracker    Tracker
	normalizer Normalizer
	log        zerolog.Logger
}

// NewAggregator returns an Aggregator. A nil normalizer leaves queries as typed.
func NewAggregator(t Tracker, n Normalizer, log zerolog.Logger) *Aggregator {
	if n == nil {
		n = identity{}
	}
	return &Aggregator{tracker: t, normalizer: n, log: log}
}

// Collect runs each query and attaches worklogs to every matched issue.
// Any tracker error aborts the collection.
func (a *Aggregator) Collect(ctx context.Context, queries ...string) (Result, error) {
	var res Result
	for _, raw := range queries {
		q := a.normalizer.Normalize(raw)
		issues, err := a.tracker.Search(ctx, q)
		if err != nil {
			return Result{}, err
		}
		for i := range issues {
			wls, err := a.tracker.Worklogs(ctx, issues[i].Key)
			if err != nil {
				return Result{}, fmt.Errorf("collect worklogs: %w", err)
			}
			issues[i].Worklogs = wls
		}
		a.log.Debug().Str("jql", q).Int("issues", len(issues)).Msg("collected worklogs")
		res.Queries = append(res.Queries, QueryResult{Query: q, Issues: issues})
	}
	return res, nil
}
