package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "revreport"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage revreport configuration.

Running bare 'revreport config' is the same as 'revreport config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
const configTemplate = `# revreport configuration
# See: revreport config show (for effective values and sources)

# Directory spreadsheets are written to (default: reports/ next to the binary)
reports_dir: "{{ .ReportsDir }}"

# Jira issue tracker
jira:
  url: "{{ .JiraURL }}"
  username: "{{ .JiraUsername }}"
  # password: ""
  # Personal access token, used instead of username/password when set
  # token: ""

  # Repair JQL typed in a CP866/CP1251 console (default: true on Windows).
  # Queries of plain ASCII and Russian letters are always sent as typed.
  legacy_encodings: {{ .JiraLegacyEncodings }}

# Code host: "bitbucket" (Bitbucket Server) or "github"
codehost:
  provider: "{{ .CodehostProvider }}"

bitbucket:
  url: "{{ .BitbucketURL }}"
  username: "{{ .BitbucketUsername }}"
  # password: ""
  # token: ""

github:
  # token: ""
  # GitHub Enterprise API root, e.g. https://github.example.com/api/v3/
  base_url: "{{ .GitHubBaseURL }}"

http:
  timeout: "{{ .HTTPTimeout }}"

report:
  # Decimal separator of the hours column
  decimal_separator: "{{ .DecimalSeparator }}"

log:
  # trace, debug, info, warn, error
  level: "{{ .LogLevel }}"
  # console or json
  format: "{{ .LogFormat }}"
`

type configTemplateData struct {
	ReportsDir          string
	JiraURL             string
	JiraUsername        string
	JiraLegacyEncodings bool
	CodehostProvider    string
	BitbucketURL        string
	BitbucketUsername   string
	GitHubBaseURL       string
	HTTPTimeout         string
	DecimalSeparator    string
	LogLevel            string
	LogFormat           string
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	data := configTemplateData{
		ReportsDir:          viper.GetString("reports_dir"),
		JiraURL:             viper.GetString("jira.url"),
		JiraUsername:        viper.GetString("jira.username"),
		JiraLegacyEncodings: viper.GetBool("jira.legacy_encodings"),
		CodehostProvider:    viper.GetString("codehost.provider"),
		BitbucketURL:        viper.GetString("bitbucket.url"),
		BitbucketUsername:   viper.GetString("bitbucket.username"),
		GitHubBaseURL:       viper.GetString("github.base_url"),
		HTTPTimeout:         viper.GetString("http.timeout"),
		DecimalSeparator:    viper.GetString("report.decimal_separator"),
		LogLevel:            viper.GetString("log.level"),
		LogFormat:           viper.GetString("log.format"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKeyInfo describes a config key for display purposes.
type configKeyInfo struct {
	Key    string
	EnvVar string
	Secret bool
}

var configKeys = []configKeyInfo{
	{Key: "reports_dir", EnvVar: "REVREPORT_REPORTS_DIR"},
	{Key: "jira.url", EnvVar: "REVREPORT_JIRA_URL"},
	{Key: "jira.username", EnvVar: "REVREPORT_JIRA_USERNAME"},
	{Key: "jira.password", EnvVar: "REVREPORT_JIRA_PASSWORD", Secret: true},
	{Key: "jira.token", EnvVar: "REVREPORT_JIRA_TOKEN", Secret: true},
	{Key: "jira.legacy_encodings", EnvVar: "REVREPORT_JIRA_LEGACY_ENCODINGS"},
	{Key: "codehost.provider", EnvVar: "REVREPORT_CODEHOST_PROVIDER"},
	{Key: "bitbucket.url", EnvVar: "REVREPORT_BITBUCKET_URL"},
	{Key: "bitbucket.username", EnvVar: "REVREPORT_BITBUCKET_USERNAME"},
	{Key: "bitbucket.password", EnvVar: "REVREPORT_BITBUCKET_PASSWORD", Secret: true},
	{Key: "bitbucket.token", EnvVar: "REVREPORT_BITBUCKET_TOKEN", Secret: true},
	{Key: "github.token", EnvVar: "REVREPORT_GITHUB_TOKEN", Secret: true},
	{Key: "github.base_url", EnvVar: "REVREPORT_GITHUB_BASE_URL"},
	{Key: "http.timeout", EnvVar: "REVREPORT_HTTP_TIMEOUT"},
	{Key: "report.decimal_separator", EnvVar: "REVREPORT_REPORT_DECIMAL_SEPARATOR"},
	{Key: "log.level", EnvVar: "REVREPORT_LOG_LEVEL"},
	{Key: "log.format", EnvVar: "REVREPORT_LOG_FORMAT"},
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if config file exists
	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	// Read config file values to determine file source
	fileValues := readConfigFileValues(cfgPath)

	for _, k := range configKeys {
		val := viper.Get(k.Key)
		if k.Secret {
			val = maskSecret(viper.GetString(k.Key))
		}
		source := detectSource(k.Key, k.EnvVar, fileValues)
		fmt.Fprintf(ui.Out, "  %-26s %v  %s\n", k.Key, val, source)
	}

	return nil
}

// maskSecret hides credentials in config output.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

// readConfigFileValues reads the raw YAML file and returns a flat map of keys present in it.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	// Flatten nested keys with dot notation
	flattenKeys("", parsed, result)
	return result
}

// flattenKeys recursively flattens a nested map to dot-notation keys.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource determines where a config value is coming from.
func detectSource(key, envVar string, fileValues map[string]bool) string {
	if _, ok := os.LookupEnv(envVar); ok {
		return fmt.Sprintf("(env: %s)", envVar)
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set; set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'revreport config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}
