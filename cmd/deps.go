package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/joescharf/revreport/internal/codehost"
	"github.com/joescharf/revreport/internal/logging"
	"github.com/joescharf/revreport/internal/report"
	"github.com/joescharf/revreport/internal/tracker"
)

var errJiraNotConfigured = errors.New("jira.url is not configured (run 'revreport config init')")

// newLogger returns the run's diagnostic logger, tagged with a fresh run id.
func newLogger() zerolog.Logger {
	level := viper.GetString("log.level")
	if verbose {
		level = "debug"
	}
	log := logging.New(logging.Config{Level: level, Format: viper.GetString("log.format")}, os.Stderr)
	return log.With().Str("run", ulid.Make().String()).Logger()
}

func httpTimeout() time.Duration {
	d := viper.GetDuration("http.timeout")
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}

// openTracker connects to Jira. It returns errJiraNotConfigured when no
// server URL is set.
func openTracker(log zerolog.Logger) (*tracker.JiraClient, error) {
	if viper.GetString("jira.url") == "" {
		return nil, errJiraNotConfigured
	}
	return tracker.NewJiraClient(tracker.Config{
		URL:      viper.GetString("jira.url"),
		Username: viper.GetString("jira.username"),
		Password: viper.GetString("jira.password"),
		Token:    viper.GetString("jira.token"),
		Timeout:  httpTimeout(),
	}, log)
}

func closeTracker(jc *tracker.JiraClient) {
	ui.VerboseLog("Closing Jira session")
	if err := jc.Close(); err != nil {
		ui.Warning("close jira session: %v", err)
	}
}

// openCodeHost returns the client for the configured code host provider.
func openCodeHost(ctx context.Context, log zerolog.Logger) (codehost.Client, error) {
	switch p := viper.GetString("codehost.provider"); p {
	case "bitbucket", "":
		return codehost.NewBitbucket(codehost.BitbucketConfig{
			URL:      viper.GetString("bitbucket.url"),
			Username: viper.GetString("bitbucket.username"),
			Password: viper.GetString("bitbucket.password"),
			Token:    viper.GetString("bitbucket.token"),
			Timeout:  httpTimeout(),
		}, log)
	case "github":
		return codehost.NewGitHub(ctx, codehost.GitHubConfig{
			Token:   viper.GetString("github.token"),
			BaseURL: viper.GetString("github.base_url"),
		}, log)
	default:
		return nil, fmt.Errorf("unknown codehost.provider: %s (use: bitbucket, github)", p)
	}
}

func reportWriter() *report.Writer {
	return &report.Writer{Dir: viper.GetString("reports_dir")}
}
