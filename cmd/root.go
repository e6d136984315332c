package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/revreport/internal/output"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "revreport",
	Short: "Worklog and code review reports from Jira and Bitbucket",
	Long: `revreport builds spreadsheet reports from an issue tracker and a code host.

It collects Jira worklogs for JQL queries, and tallies tagged review comments
("[hx] missing null check") per pull request author into fault statistics.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Collect data but do not write spreadsheets")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/revreport/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDirFunc()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("REVREPORT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

// setDefaults registers the default for every config key.
func setDefaults() {
	viper.SetDefault("reports_dir", defaultReportsDir())
	viper.SetDefault("jira.url", "")
	viper.SetDefault("jira.username", "")
	viper.SetDefault("jira.password", "")
	viper.SetDefault("jira.token", "")
	viper.SetDefault("jira.legacy_encodings", runtime.GOOS == "windows")
	viper.SetDefault("codehost.provider", "bitbucket")
	viper.SetDefault("bitbucket.url", "")
	viper.SetDefault("bitbucket.username", "")
	viper.SetDefault("bitbucket.password", "")
	viper.SetDefault("bitbucket.token", "")
	viper.SetDefault("github.token", "")
	viper.SetDefault("github.base_url", "")
	viper.SetDefault("http.timeout", "30s")
	viper.SetDefault("report.decimal_separator", ",")
	viper.SetDefault("log.level", "warn")
	viper.SetDefault("log.format", "console")
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun
}

// defaultReportsDir returns the reports directory next to the installed binary.
func defaultReportsDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "reports"
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), "reports")
}
