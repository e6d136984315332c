package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/revreport/internal/report"
	"github.com/joescharf/revreport/internal/tracker"
	"github.com/joescharf/revreport/internal/worklog"
)

var (
	worklogQueries []string
	worklogFile    string
	worklogSheet   string
	worklogRow     int
	worklogCol     int
)

var worklogsCmd = &cobra.Command{
	Use:   "worklogs",
	Short: "Write Jira worklogs for JQL queries to a spreadsheet",
	Long: `Search Jira with one or more JQL queries and write one row per matched
issue with the time logged against it.

Example:
  revreport worklogs --jql 'project = QA AND worklogDate >= startOfMonth()' --file qa-october`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return worklogsRun(cmd.Context())
	},
}

func init() {
	worklogsCmd.Flags().StringArrayVar(&worklogQueries, "jql", nil, "JQL query (repeatable)")
	worklogsCmd.Flags().StringVar(&worklogFile, "file", "worklogs", "Spreadsheet file name in the reports directory")
	worklogsCmd.Flags().StringVar(&worklogSheet, "sheet", "Worklogs", "Sheet name")
	worklogsCmd.Flags().IntVar(&worklogRow, "row", 0, "First row of the table (0-based)")
	worklogsCmd.Flags().IntVar(&worklogCol, "col", 0, "First column of the table (0-based)")
	rootCmd.AddCommand(worklogsCmd)
}

func worklogsRun(ctx context.Context) error {
	if len(worklogQueries) == 0 {
		return errors.New("at least one --jql query is required")
	}
	log := newLogger()

	jc, err := openTracker(log)
	if err != nil {
		return err
	}
	defer closeTracker(jc)

	norm := tracker.Normalizer{Legacy: viper.GetBool("jira.legacy_encodings")}
	res, err := worklog.NewAggregator(jc, norm, log).Collect(ctx, worklogQueries...)
	if err != nil {
		return err
	}
	ui.Info("Collected %d issues for %d queries", res.IssueCount(), len(res.Queries))

	return writeWorklogs(res)
}

func writeWorklogs(res worklog.Result) error {
	rows := report.WorklogRows(res, viper.GetString("report.decimal_separator"))
	w := reportWriter()

	if dryRun {
		ui.DryRunMsg("Would write %d rows to %s [%s]", len(rows), w.Path(worklogFile), worklogSheet)
		return nil
	}

	path, err := w.Write(worklogFile, worklogSheet, worklogRow, worklogCol, report.WorklogHeader, rows)
	if err != nil {
		return err
	}
	ui.Success("Worklog report written: %s", path)
	return nil
}
