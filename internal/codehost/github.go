package codehost

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v73/github"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/joescharf/revreport/internal/models"
)

const githubPageSize = 100

// GitHubConfig holds GitHub connection settings.
type GitHubConfig struct {
	Token   string
	BaseURL string // GitHub Enterprise API root; empty for github.com
}

// GitHub is a Client backed by the GitHub REST API.
type GitHub struct {
	client *github.Client
	log    zerolog.Logger
}

// NewGitHub returns a GitHub client, authenticated when cfg.Token is set.
func NewGitHub(ctx context.Context, cfg GitHubConfig, log zerolog.Logger) (*GitHub, error) {
	var hc *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		hc = oauth2.NewClient(ctx, ts)
	}
	client := github.NewClient(hc)
	if cfg.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("github base url: %w", err)
		}
	}
	return &GitHub{client: client, log: log}, nil
}

// PullRequests lists pull requests of owner/repo. Closed pull requests are
// reported as MERGED or DECLINED depending on whether they were merged.
func (g *GitHub) PullRequests(ctx context.Context, owner, repo, state string) ([]PullRequest, error) {
	ghState := "closed"
	switch state {
	case StateAll:
		ghState = "all"
	case string(models.ReviewStateOpen):
		ghState = "open"
	}

	opts := &github.PullRequestListOptions{
		State:       ghState,
		ListOptions: github.ListOptions{PerPage: githubPageSize},
	}
	var out []PullRequest
	for {
		prs, resp, err := g.client.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("list pull requests %s/%s: %w", owner, repo, err)
		}
		for _, pr := range prs {
			p := toPullRequest(pr)
			if state != StateAll && string(p.State) != state {
				continue
			}
			out = append(out, p)
		}
		if resp == nil || resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

func toPullRequest(pr *github.PullRequest) PullRequest {
	state := models.ReviewStateDeclined
	switch {
	case pr.GetState() == "open":
		state = models.ReviewStateOpen
	case pr.MergedAt != nil:
		state = models.ReviewStateMerged
	}
	return PullRequest{
		ID:          int64(pr.GetNumber()),
		Title:       pr.GetTitle(),
		Description: pr.GetBody(),
		Author:      pr.GetUser().GetLogin(),
		State:       state,
		CreatedAt:   pr.GetCreatedAt().Time,
	}
}

// Activities returns conversation comments, then inline review comments, then
// reviews. A review summary with text is reported as a COMMENTED activity
// followed by its verdict.
func (g *GitHub) Activities(ctx context.Context, owner, repo string, id int64) ([]models.Activity, error) {
	number := int(id)
	var out []models.Activity

	iopts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: githubPageSize}}
	for {
		comments, resp, err := g.client.Issues.ListComments(ctx, owner, repo, number, iopts)
		if err != nil {
			return nil, fmt.Errorf("pull request %d comments: %w", id, err)
		}
		for _, c := range comments {
			out = append(out, commentActivity(c.GetID(), c.GetUser().GetLogin(), c.GetBody()))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		iopts.Page = resp.NextPage
	}

	popts := &github.PullRequestListCommentsOptions{ListOptions: github.ListOptions{PerPage: githubPageSize}}
	for {
		comments, resp, err := g.client.PullRequests.ListComments(ctx, owner, repo, number, popts)
		if err != nil {
			return nil, fmt.Errorf("pull request %d review comments: %w", id, err)
		}
		for _, c := range comments {
			out = append(out, commentActivity(c.GetID(), c.GetUser().GetLogin(), c.GetBody()))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		popts.Page = resp.NextPage
	}

	ropts := &github.ListOptions{PerPage: githubPageSize}
	for {
		reviews, resp, err := g.client.PullRequests.ListReviews(ctx, owner, repo, number, ropts)
		if err != nil {
			return nil, fmt.Errorf("pull request %d reviews: %w", id, err)
		}
		for _, r := range reviews {
			user := r.GetUser().GetLogin()
			if body := r.GetBody(); body != "" {
				out = append(out, commentActivity(r.GetID(), user, body))
			}
			action := "REVIEWED"
			if r.GetState() == "APPROVED" {
				action = "APPROVED"
			}
			out = append(out, models.Activity{ID: r.GetID(), Action: action, User: user})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		ropts.Page = resp.NextPage
	}

	g.log.Debug().Str("repo", owner+"/"+repo).Int64("pr", id).Int("activities", len(out)).Msg("github activities")
	return out, nil
}

func commentActivity(id int64, user, body string) models.Activity {
	return models.Activity{
		ID:      id,
		Action:  ActionCommented,
		User:    user,
		Comment: &models.ActivityComment{ID: id, Text: body},
	}
}
