package models

import "time"

// ReviewState is the lifecycle state of a pull request on the code host.
type ReviewState string

const (
	ReviewStateOpen     ReviewState = "OPEN"
	ReviewStateDeclined ReviewState = "DECLINED"
	ReviewStateMerged   ReviewState = "MERGED"
)

// NoComponent is the component label used when no linked tracker issue
// resolves to a component.
const NoComponent = "NoComponent"

// Activity is a single entry of a pull request activity feed.
type Activity struct {
	ID      int64
	Action  string
	User    string
	Comment *ActivityComment
}

// ActivityComment is the comment payload of a COMMENTED activity.
type ActivityComment struct {
	ID   int64
	Text string
}

// ReviewRequest is one pull request together with the data derived from it
// while building a fault report.
type ReviewRequest struct {
	ID          int64
	Project     string
	Repository  string
	Title       string
	Description string
	Author      string
	State       ReviewState
	CreatedAt   time.Time

	Activities []Activity
	Comments   []string
	IssueURLs  []string
	Component  string
	TestsCount int
}
