package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
	NoColor    bool
}

var globalFlags GlobalFlags

// RenameFlags holds the flags shared by preview and apply
type RenameFlags struct {
	Pattern      string
	Replacement  string
	Exclude      []string
	Output       string
	RegexTimeout string
	// apply only
	Yes          bool
	Report       string
	ReportFormat string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var renameFlags RenameFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/renamr/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"log to stderr at debug level",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
	cmd.PersistentFlags().BoolVar(
		&globalFlags.NoColor,
		"no-color",
		false,
		"disable coloured output",
	)
}

// addRenameFlags adds the rule and ingestion flags to cmd
func addRenameFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&renameFlags.Pattern, "find", "f", "", "regular expression matched against file names")
	cmd.Flags().StringVarP(&renameFlags.Replacement, "replace", "r", "", "replacement, may reference groups as $1 or ${name}")
	cmd.Flags().StringSliceVar(&renameFlags.Exclude, "exclude", []string{}, "glob patterns to exclude")
	cmd.Flags().StringVarP(&renameFlags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().StringVar(&renameFlags.RegexTimeout, "regex-timeout", "", "time limit for one substitution (e.g. \"5ms\")")

	// Logging flags
	cmd.Flags().StringVar(&renameFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&renameFlags.LogFormat, "log-format", "", "log format: text, json")
	cmd.Flags().StringVar(&renameFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
}

// GetGlobalFlags returns the global flags
func GetGlobalFlags() *GlobalFlags {
	return &globalFlags
}
