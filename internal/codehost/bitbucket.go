package codehost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/joescharf/revreport/internal/models"
)

const (
	bitbucketPageSize = 100
	maxAttempts       = 3
)

// StatusError is returned when the code host answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("code host api status=%d body=%s", e.StatusCode, e.Body)
}

func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// BitbucketConfig holds Bitbucket Server connection settings.
type BitbucketConfig struct {
	URL      string
	Username string
	Password string
	Token    string // HTTP access token, preferred over basic auth
	Timeout  time.Duration
}

// Bitbucket is a Client for the Bitbucket Server REST API 1.0.
type Bitbucket struct {
	baseURL string
	user    string
	pass    string
	token   string
	http    *http.Client
	log     zerolog.Logger
	backoff time.Duration
}

// NewBitbucket returns a Bitbucket Server client.
func NewBitbucket(cfg BitbucketConfig, log zerolog.Logger) (*Bitbucket, error) {
	if cfg.URL == "" {
		return nil, errors.New("bitbucket: empty url")
	}
	return &Bitbucket{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		user:    cfg.Username,
		pass:    cfg.Password,
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     log,
		backoff: 300 * time.Millisecond,
	}, nil
}

type bbUser struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

type bbPullRequest struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	State       string `json:"state"`
	CreatedDate int64  `json:"createdDate"`
	Author      struct {
		User bbUser `json:"user"`
	} `json:"author"`
}

type bbActivity struct {
	ID      int64  `json:"id"`
	Action  string `json:"action"`
	User    bbUser `json:"user"`
	Comment *struct {
		ID   int64  `json:"id"`
		Text string `json:"text"`
	} `json:"comment"`
}

type bbPage[T any] struct {
	Values        []T  `json:"values"`
	IsLastPage    bool `json:"isLastPage"`
	NextPageStart int  `json:"nextPageStart"`
}

// PullRequests lists pull requests of project/repo in the given state.
func (b *Bitbucket) PullRequests(ctx context.Context, project, repo, state string) ([]PullRequest, error) {
	q := url.Values{}
	q.Set("state", state)
	path := fmt.Sprintf("/rest/api/1.0/projects/%s/repos/%s/pull-requests",
		url.PathEscape(project), url.PathEscape(repo))

	raw, err := getPaged[bbPullRequest](ctx, b, path, q)
	if err != nil {
		return nil, fmt.Errorf("list pull requests %s/%s: %w", project, repo, err)
	}

	out := make([]PullRequest, 0, len(raw))
	for _, p := range raw {
		out = append(out, PullRequest{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Author:      p.Author.User.DisplayName,
			State:       models.ReviewState(p.State),
			CreatedAt:   time.UnixMilli(p.CreatedDate),
		})
	}
	return out, nil
}

// Activities returns the activity feed of one pull request, newest first as
// served by Bitbucket.
func (b *Bitbucket) Activities(ctx context.Context, project, repo string, id int64) ([]models.Activity, error) {
	path := fmt.Sprintf("/rest/api/1.0/projects/%s/repos/%s/pull-requests/%d/activities",
		url.PathEscape(project), url.PathEscape(repo), id)

	raw, err := getPaged[bbActivity](ctx, b, path, nil)
	if err != nil {
		return nil, fmt.Errorf("pull request %d activities: %w", id, err)
	}

	out := make([]models.Activity, 0, len(raw))
	for _, a := range raw {
		act := models.Activity{ID: a.ID, Action: a.Action, User: a.User.DisplayName}
		if a.Comment != nil {
			act.Comment = &models.ActivityComment{ID: a.Comment.ID, Text: a.Comment.Text}
		}
		out = append(out, act)
	}
	return out, nil
}

func getPaged[T any](ctx context.Context, b *Bitbucket, path string, q url.Values) ([]T, error) {
	if q == nil {
		q = url.Values{}
	}
	q.Set("limit", strconv.Itoa(bitbucketPageSize))

	var all []T
	start := 0
	for {
		q.Set("start", strconv.Itoa(start))
		var page bbPage[T]
		if err := b.getJSON(ctx, b.baseURL+path+"?"+q.Encode(), &page); err != nil {
			return nil, err
		}
		all = append(all, page.Values...)
		b.log.Debug().Str("path", path).Int("start", start).Int("values", len(page.Values)).Msg("bitbucket page")

		if page.IsLastPage || len(page.Values) == 0 {
			return all, nil
		}
		if page.NextPageStart <= start {
			b.log.Warn().Str("path", path).Int("start", start).Int("next", page.NextPageStart).Msg("bitbucket page cursor did not advance")
			return all, nil
		}
		start = page.NextPageStart
	}
}

func (b *Bitbucket) getJSON(ctx context.Context, u string, out any) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.backoff * time.Duration(1<<(attempt-1))):
			}
		}

		err := b.do(ctx, u, out)
		if err == nil {
			return nil
		}
		lastErr = err

		var se *StatusError
		if errors.As(err, &se) && !se.retryable() {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		b.log.Debug().Err(err).Int("attempt", attempt+1).Msg("bitbucket request failed")
	}
	return lastErr
}

func (b *Bitbucket) do(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	} else if b.user != "" {
		req.SetBasicAuth(b.user, b.pass)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
