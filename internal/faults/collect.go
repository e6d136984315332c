package faults

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/joescharf/revreport/internal/codehost"
	"github.com/joescharf/revreport/internal/links"
	"github.com/joescharf/revreport/internal/models"
)

// Filter narrows the pull requests taken into a report.
type Filter struct {
	State string    // codehost.StateAll or a models.ReviewState
	Since time.Time // inclusive; zero means unbounded
	Until time.Time // exclusive; zero means unbounded
}

func (f Filter) match(pr codehost.PullRequest) bool {
	if !f.Since.IsZero() && pr.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !pr.CreatedAt.Before(f.Until) {
		return false
	}
	return true
}

// Collector builds ReviewRequests from a code host.
type Collector struct {
	host     codehost.Client
	resolver *links.Resolver
	log      zerolog.Logger
}

// NewCollector returns a Collector that resolves description links with resolver.
func NewCollector(host codehost.Client, resolver *links.Resolver, log zerolog.Logger) *Collector {
	return &Collector{host: host, resolver: resolver, log: log}
}

// ReviewRequests fetches the pull requests of project/repo matching f and
// builds a ReviewRequest for each, one at a time in listing order.
func (c *Collector) ReviewRequests(ctx context.Context, project, repo string, f Filter) ([]*models.ReviewRequest, error) {
	state := f.State
	if state == "" {
		state = codehost.StateAll
	}
	prs, err := c.host.PullRequests(ctx, project, repo, state)
	if err != nil {
		return nil, err
	}

	var out []*models.ReviewRequest
	for _, pr := range prs {
		if !f.match(pr) {
			continue
		}
		rr, err := c.build(ctx, project, repo, pr)
		if err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	c.log.Debug().Str("repo", project+"/"+repo).Int("listed", len(prs)).Int("kept", len(out)).Msg("review requests")
	return out, nil
}

func (c *Collector) build(ctx context.Context, project, repo string, pr codehost.PullRequest) (*models.ReviewRequest, error) {
	acts, err := c.host.Activities(ctx, project, repo, pr.ID)
	if err != nil {
		return nil, err
	}
	res := c.resolver.Resolve(ctx, pr.Description)

	return &models.ReviewRequest{
		ID:          pr.ID,
		Project:     project,
		Repository:  repo,
		Title:       pr.Title,
		Description: pr.Description,
		Author:      pr.Author,
		State:       pr.State,
		CreatedAt:   pr.CreatedAt,
		Activities:  acts,
		Comments:    codehost.CommentTexts(acts),
		IssueURLs:   res.URLs,
		Component:   res.Component,
		TestsCount:  res.Count,
	}, nil
}

// Aggregate rolls review requests up into one AuthorAggregate per author and
// repository, sorted by repository then author.
func Aggregate(requests []*models.ReviewRequest) []*models.AuthorAggregate {
	type key struct{ author, repo string }
	byKey := make(map[key]*models.AuthorAggregate)
	var out []*models.AuthorAggregate

	for _, rr := range requests {
		k := key{rr.Author, rr.Repository}
		agg, ok := byKey[k]
		if !ok {
			agg = models.NewAuthorAggregate(rr.Author, rr.Repository)
			byKey[k] = agg
			out = append(out, agg)
		}
		agg.PRCount++
		agg.TestsCount += rr.TestsCount
		if agg.Component == models.NoComponent && rr.Component != "" {
			agg.Component = rr.Component
		}
		Classify(agg, rr.Comments)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Repository != out[j].Repository {
			return out[i].Repository < out[j].Repository
		}
		return out[i].Author < out[j].Author
	})
	return out
}
