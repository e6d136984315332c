// Package links finds tracker issue links in pull request descriptions and
// resolves them to a component label.
package links

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/joescharf/revreport/internal/models"
)

var (
	issueURLPattern = regexp.MustCompile(`https?://[^\s/]*jira[-.]\S*`)
	issueKeyPattern = regexp.MustCompile(`\S*/(\S*-\d*)`)
)

// IssueLookup returns the component names of a tracker issue.
type IssueLookup interface {
	IssueComponents(ctx context.Context, key string) ([]string, error)
}

// Resolution is the outcome of scanning one description.
type Resolution struct {
	URLs      []string
	Count     int
	Component string
}

// ExtractIssueURLs returns the distinct tracker URLs in text, in order of
// first appearance.
func ExtractIssueURLs(text string) []string {
	if text == "" {
		return nil
	}
	var urls []string
	seen := make(map[string]bool)
	for _, u := range issueURLPattern.FindAllString(text, -1) {
		if seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}

// IssueKey extracts the PROJECT-NUMBER key from the last path segment of url.
func IssueKey(url string) string {
	m := issueKeyPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// Resolver resolves description links through an optional IssueLookup.
type Resolver struct {
	lookup IssueLookup
	log    zerolog.Logger
}

// NewResolver returns a Resolver. lookup may be nil, in which case every
// description resolves to models.NoComponent.
func NewResolver(lookup IssueLookup, log zerolog.Logger) *Resolver {
	return &Resolver{lookup: lookup, log: log}
}

// Resolve scans description for tracker links and returns the component of
// the first linked issue that has one. Lookup failures skip the key.
func (r *Resolver) Resolve(ctx context.Context, description string) Resolution {
	urls := ExtractIssueURLs(description)
	res := Resolution{URLs: urls, Count: len(urls), Component: models.NoComponent}
	if r.lookup == nil {
		return res
	}

	for _, u := range urls {
		key := IssueKey(u)
		if !validKey(key) {
			continue
		}
		components, err := r.lookup.IssueComponents(ctx, key)
		if err != nil {
			r.log.Debug().Err(err).Str("issue", key).Msg("issue lookup failed, skipping")
			continue
		}
		if len(components) > 0 {
			res.Component = strings.Join(components, ",")
			break
		}
	}
	return res
}

// validKey rejects captures like "jira-" that have no issue number.
func validKey(key string) bool {
	i := strings.LastIndexByte(key, '-')
	return i > 0 && i < len(key)-1
}
