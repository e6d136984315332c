package models

// Severity is the coarse fault bucket of a tagged review comment.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Categories lists the fine-grained fault tags in report column order.
var Categories = []string{
	"hr", "hs", "hl", "hx", "hc",
	"mr", "ms", "ml", "mx", "mc",
	"lr", "ls", "ll", "lx", "lc",
}

// CategoryCounts holds one counter per known fine-grained tag.
type CategoryCounts struct {
	HR, HS, HL, HX, HC int
	MR, MS, ML, MX, MC int
	LR, LS, LL, LX, LC int
}

func (c *CategoryCounts) counter(tag string) *int {
	switch tag {
	case "hr":
		return &c.HR
	case "hs":
		return &c.HS
	case "hl":
		return &c.HL
	case "hx":
		return &c.HX
	case "hc":
		return &c.HC
	case "mr":
		return &c.MR
	case "ms":
		return &c.MS
	case "ml":
		return &c.ML
	case "mx":
		return &c.MX
	case "mc":
		return &c.MC
	case "lr":
		return &c.LR
	case "ls":
		return &c.LS
	case "ll":
		return &c.LL
	case "lx":
		return &c.LX
	case "lc":
		return &c.LC
	}
	return nil
}

// Inc increments the counter for tag. It reports false, leaving every
// counter untouched, when tag is not a known category.
func (c *CategoryCounts) Inc(tag string) bool {
	p := c.counter(tag)
	if p == nil {
		return false
	}
	*p++
	return true
}

// Get returns the count for tag, or 0 for an unknown tag.
func (c *CategoryCounts) Get(tag string) int {
	if p := c.counter(tag); p != nil {
		return *p
	}
	return 0
}

// AuthorAggregate is the running fault tally of one author in one repository.
type AuthorAggregate struct {
	Author     string
	Repository string
	Component  string
	TestsCount int

	PRCount int
	Faults  int
	High    int
	Medium  int
	Low     int

	Categories    CategoryCounts
	Uncategorized int
}

// NewAuthorAggregate returns an empty aggregate for author in repository.
func NewAuthorAggregate(author, repository string) *AuthorAggregate {
	return &AuthorAggregate{
		Author:     author,
		Repository: repository,
		Component:  NoComponent,
	}
}

// AddSeverity records one classified fault in the given bucket.
func (a *AuthorAggregate) AddSeverity(s Severity) {
	switch s {
	case SeverityHigh:
		a.High++
	case SeverityMedium:
		a.Medium++
	case SeverityLow:
		a.Low++
	default:
		return
	}
	a.Faults++
}
