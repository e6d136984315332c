package models

import "time"

// Issue is a tracker issue returned by a JQL search, with its worklogs.
type Issue struct {
	Key        string
	Summary    string
	Status     string
	Assignee   string
	Components []string
	Worklogs   []Worklog
}

// Worklog is a single time entry recorded against an issue.
type Worklog struct {
	ID               string
	Author           string
	Comment          string
	Started          time.Time
	TimeSpentSeconds int
}

// TimeSpentSeconds sums all worklog entries of the issue.
func (i *Issue) TimeSpentSeconds() int {
	total := 0
	for _, w := range i.Worklogs {
		total += w.TimeSpentSeconds
	}
	return total
}

// WorklogAuthors returns the distinct worklog authors in first-seen order.
func (i *Issue) WorklogAuthors() []string {
	seen := make(map[string]bool)
	var authors []string
	for _, w := range i.Worklogs {
		if w.Author == "" || seen[w.Author] {
			continue
		}
		seen[w.Author] = true
		authors = append(authors, w.Author)
	}
	return authors
}
