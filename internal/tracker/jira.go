// Package tracker talks to the Jira issue tracker.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	jira "github.com/andygrunwald/go-jira"
	"github.com/rs/zerolog"

	"github.com/joescharf/revreport/internal/models"
)

const searchPageSize = 50

var searchFields = []string{"summary", "status", "assignee", "components"}

// Config holds the connection settings for a Jira server.
type Config struct {
	URL      string
	Username string
	Password string
	Token    string // personal access token, preferred over basic auth
	Timeout  time.Duration
}

// JiraClient wraps go-jira with the few calls reports need.
type JiraClient struct {
	api  *jira.Client
	http *http.Client
	log  zerolog.Logger
}

// NewJiraClient connects to the Jira server described by cfg.
func NewJiraClient(cfg Config, log zerolog.Logger) (*JiraClient, error) {
	if cfg.URL == "" {
		return nil, errors.New("jira: empty url")
	}

	var hc *http.Client
	switch {
	case cfg.Token != "":
		tp := &jira.PATAuthTransport{Token: cfg.Token}
		hc = tp.Client()
	case cfg.Username != "":
		tp := &jira.BasicAuthTransport{Username: cfg.Username, Password: cfg.Password}
		hc = tp.Client()
	default:
		hc = &http.Client{}
	}
	hc.Timeout = cfg.Timeout

	api, err := jira.NewClient(hc, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("jira client: %w", err)
	}
	return &JiraClient{api: api, http: hc, log: log}, nil
}

// Search runs jql and returns every matching issue, following pagination.
func (c *JiraClient) Search(ctx context.Context, jql string) ([]models.Issue, error) {
	var out []models.Issue
	start := 0
	for {
		page, resp, err := c.api.Issue.SearchWithContext(ctx, jql, &jira.SearchOptions{
			StartAt:    start,
			MaxResults: searchPageSize,
			Fields:     searchFields,
		})
		if err != nil {
			return nil, fmt.Errorf("jira search %q: %w", jql, err)
		}
		for i := range page {
			out = append(out, toIssue(&page[i]))
		}
		start += len(page)
		c.log.Debug().Str("jql", jql).Int("fetched", start).Msg("jira search page")

		if len(page) == 0 || resp == nil || start >= resp.Total {
			break
		}
	}
	return out, nil
}

// Worklogs returns the worklog entries recorded on the issue.
func (c *JiraClient) Worklogs(ctx context.Context, key string) ([]models.Worklog, error) {
	wl, _, err := c.api.Issue.GetWorklogsWithContext(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("jira worklogs %s: %w", key, err)
	}
	if wl == nil {
		return nil, nil
	}
	out := make([]models.Worklog, 0, len(wl.Worklogs))
	for _, r := range wl.Worklogs {
		w := models.Worklog{
			ID:               r.ID,
			Comment:          r.Comment,
			TimeSpentSeconds: r.TimeSpentSeconds,
		}
		if r.Author != nil {
			w.Author = r.Author.DisplayName
		}
		if r.Started != nil {
			w.Started = time.Time(*r.Started)
		}
		out = append(out, w)
	}
	return out, nil
}

// IssueComponents returns the component names of the issue with the given key.
func (c *JiraClient) IssueComponents(ctx context.Context, key string) ([]string, error) {
	issue, _, err := c.api.Issue.GetWithContext(ctx, key, &jira.GetQueryOptions{Fields: "components"})
	if err != nil {
		return nil, fmt.Errorf("jira issue %s: %w", key, err)
	}
	if issue == nil || issue.Fields == nil {
		return nil, nil
	}
	return componentNames(issue.Fields.Components), nil
}

// Close releases the connections held by the client.
func (c *JiraClient) Close() error {
	c.log.Debug().Msg("closing jira session")
	c.http.CloseIdleConnections()
	return nil
}

func toIssue(i *jira.Issue) models.Issue {
	out := models.Issue{Key: i.Key}
	f := i.Fields
	if f == nil {
		return out
	}
	out.Summary = f.Summary
	if f.Status != nil {
		out.Status = f.Status.Name
	}
	if f.Assignee != nil {
		out.Assignee = f.Assignee.DisplayName
	}
	out.Components = componentNames(f.Components)
	return out
}

func componentNames(cs []*jira.Component) []string {
	var names []string
	for _, c := range cs {
		if c != nil && c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return names
}
