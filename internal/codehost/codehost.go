// Package codehost reads pull requests and their activity from a code host.
package codehost

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joescharf/revreport/internal/models"
)

// ActionCommented is the activity action carrying a review comment.
const ActionCommented = "COMMENTED"

// StateAll selects pull requests in any state.
const StateAll = "ALL"

// PullRequest is the pull request metadata returned by a listing.
type PullRequest struct {
	ID          int64
	Title       string
	Description string
	Author      string
	State       models.ReviewState
	CreatedAt   time.Time
}

// Client lists pull requests and reads their activity feed.
// For GitHub, project is the repository owner.
type Client interface {
	PullRequests(ctx context.Context, project, repo, state string) ([]PullRequest, error)
	Activities(ctx context.Context, project, repo string, id int64) ([]models.Activity, error)
}

// CommentTexts returns the comment bodies of COMMENTED activities in feed order.
func CommentTexts(acts []models.Activity) []string {
	var out []string
	for _, a := range acts {
		if a.Action != ActionCommented || a.Comment == nil {
			continue
		}
		out = append(out, a.Comment.Text)
	}
	return out
}

// ParseState validates a state filter given on the command line.
func ParseState(s string) (string, error) {
	switch up := strings.ToUpper(strings.TrimSpace(s)); up {
	case "", StateAll:
		return StateAll, nil
	case string(models.ReviewStateOpen), string(models.ReviewStateMerged), string(models.ReviewStateDeclined):
		return up, nil
	default:
		return "", fmt.Errorf("unknown pull request state: %s (use: ALL, OPEN, MERGED, DECLINED)", s)
	}
}
