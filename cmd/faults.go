package cmd

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/revreport/internal/codehost"
	"github.com/joescharf/revreport/internal/faults"
	"github.com/joescharf/revreport/internal/links"
	"github.com/joescharf/revreport/internal/models"
	"github.com/joescharf/revreport/internal/report"
)

const dateLayout = "2006-01-02"

var (
	faultsProject string
	faultsRepos   []string
	faultsState   string
	faultsSince   string
	faultsUntil   string
	faultsFile    string
	faultsSheet   string
	faultsRow     int
	faultsCol     int
	faultsFormat  string
)

var faultsCmd = &cobra.Command{
	Use:   "faults",
	Short: "Tally tagged review comments per pull request author",
	Long: `Read the pull requests of one or more repositories and count review
comments by their leading tag. "[hx] missing null check" counts as a high
severity fault in category hx; comments without a tag are uncategorized.

Jira links in pull request descriptions are counted as referenced tests and
resolved to a component when jira.url is configured.

For GitHub, --project is the repository owner.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return faultsRun(cmd.Context())
	},
}

func init() {
	faultsCmd.Flags().StringVar(&faultsProject, "project", "", "Bitbucket project key (GitHub: owner)")
	faultsCmd.Flags().StringSliceVar(&faultsRepos, "repo", nil, "Repository slug (repeatable)")
	faultsCmd.Flags().StringVar(&faultsState, "state", codehost.StateAll, "Pull request state: ALL, OPEN, MERGED, DECLINED")
	faultsCmd.Flags().StringVar(&faultsSince, "since", "", "Only pull requests created on or after this date (YYYY-MM-DD)")
	faultsCmd.Flags().StringVar(&faultsUntil, "until", "", "Only pull requests created before this date (YYYY-MM-DD)")
	faultsCmd.Flags().StringVar(&faultsFile, "file", "faults", "Spreadsheet file name in the reports directory (empty to skip)")
	faultsCmd.Flags().StringVar(&faultsSheet, "sheet", "Faults", "Sheet name")
	faultsCmd.Flags().IntVar(&faultsRow, "row", 0, "First row of the table (0-based)")
	faultsCmd.Flags().IntVar(&faultsCol, "col", 0, "First column of the table (0-based)")
	faultsCmd.Flags().StringVar(&faultsFormat, "format", "table", "Terminal output format: table, json, csv, markdown")
	rootCmd.AddCommand(faultsCmd)
}

// faultsFilter validates the command line filter flags.
func faultsFilter() (faults.Filter, error) {
	var f faults.Filter
	state, err := codehost.ParseState(faultsState)
	if err != nil {
		return f, err
	}
	f.State = state

	if faultsSince != "" {
		if f.Since, err = time.ParseInLocation(dateLayout, faultsSince, time.Local); err != nil {
			return f, fmt.Errorf("invalid --since: %w", err)
		}
	}
	if faultsUntil != "" {
		if f.Until, err = time.ParseInLocation(dateLayout, faultsUntil, time.Local); err != nil {
			return f, fmt.Errorf("invalid --until: %w", err)
		}
	}
	if !f.Since.IsZero() && !f.Until.IsZero() && !f.Since.Before(f.Until) {
		return f, errors.New("--since must be before --until")
	}
	return f, nil
}

func faultsRun(ctx context.Context) error {
	if faultsProject == "" || len(faultsRepos) == 0 {
		return errors.New("--project and at least one --repo are required")
	}
	if !slices.Contains(report.Formats, faultsFormat) {
		return fmt.Errorf("unknown format: %s (use: %s)", faultsFormat, strings.Join(report.Formats, ", "))
	}
	filter, err := faultsFilter()
	if err != nil {
		return err
	}
	log := newLogger()

	host, err := openCodeHost(ctx, log)
	if err != nil {
		return err
	}

	// Component lookup is optional: without Jira every pull request
	// resolves to NoComponent.
	var lookup links.IssueLookup
	jc, err := openTracker(log)
	switch {
	case err == nil:
		defer closeTracker(jc)
		lookup = jc
	case errors.Is(err, errJiraNotConfigured):
		ui.VerboseLog("Jira not configured, components will not be resolved")
	default:
		return err
	}

	collector := faults.NewCollector(host, links.NewResolver(lookup, log), log)
	var requests []*models.ReviewRequest
	for _, repo := range faultsRepos {
		rrs, err := collector.ReviewRequests(ctx, faultsProject, repo, filter)
		if err != nil {
			return err
		}
		ui.VerboseLog("%s/%s: %d pull requests", faultsProject, repo, len(rrs))
		requests = append(requests, rrs...)
	}

	aggs := faults.Aggregate(requests)
	if err := report.Render(ui, faultsFormat, aggs); err != nil {
		return err
	}
	return writeFaults(aggs)
}

func writeFaults(aggs []*models.AuthorAggregate) error {
	if faultsFile == "" {
		return nil
	}
	rows := report.FaultRows(aggs)
	w := reportWriter()

	if dryRun {
		ui.DryRunMsg("Would write %d rows to %s [%s]", len(rows), w.Path(faultsFile), faultsSheet)
		return nil
	}

	path, err := w.Write(faultsFile, faultsSheet, faultsRow, faultsCol, report.FaultHeader(), rows)
	if err != nil {
		return err
	}
	ui.Success("Fault report written: %s", path)
	return nil
}
