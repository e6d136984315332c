// Package faults turns pull request review comments into per-author fault
// statistics.
package faults

import (
	"regexp"

	"github.com/joescharf/revreport/internal/models"
)

var (
	tagPattern = regexp.MustCompile(`^\[([^\]]{2})\]`)

	// Checked in order; the first match decides the bucket.
	severityPatterns = []struct {
		re       *regexp.Regexp
		severity models.Severity
	}{
		{regexp.MustCompile(`^h.`), models.SeverityHigh},
		{regexp.MustCompile(`^m.`), models.SeverityMedium},
		{regexp.MustCompile(`^l.`), models.SeverityLow},
	}
)

// Tag returns the two-character category tag at the start of comment,
// e.g. "hx" for "[hx] missing null check".
func Tag(comment string) (string, bool) {
	m := tagPattern.FindStringSubmatch(comment)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// SeverityOf returns the severity bucket encoded by the first character of tag.
func SeverityOf(tag string) (models.Severity, bool) {
	for _, p := range severityPatterns {
		if p.re.MatchString(tag) {
			return p.severity, true
		}
	}
	return "", false
}

// Classify tallies comments into agg. Comments without a bracketed tag, and
// tags without a severity prefix, count as uncategorized. Fine-grained
// counters are only kept for the known categories; other tags are counted
// by severity alone.
func Classify(agg *models.AuthorAggregate, comments []string) {
	for _, c := range comments {
		tag, ok := Tag(c)
		if !ok {
			agg.Uncategorized++
			continue
		}
		sev, ok := SeverityOf(tag)
		if !ok {
			agg.Uncategorized++
			continue
		}
		agg.AddSeverity(sev)
		agg.Categories.Inc(tag)
	}
}
