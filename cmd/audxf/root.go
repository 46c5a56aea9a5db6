// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	Verbose   bool
	LogFormat string // "text" | "json"
	DB        string
}

var logFormats = []string{"text", "json"}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "audxf",
		Short: "Deterministic, serializable audio transforms",
		Long: `audxf builds audio transform pipelines from YAML, exports them to a
versioned binary encoding, applies them to audio files and verifies that
exported pipelines replay exactly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return configureLogging(cmd, opts)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log debug detail")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "text", "log format (text|json)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", defaultDB(), "transform library directory")

	cmd.AddCommand(newKindsCommand())
	cmd.AddCommand(newDescribeCommand())
	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newApplyCommand(opts))
	cmd.AddCommand(newVerifyCommand(opts))
	cmd.AddCommand(newStoreCommand(opts))

	return cmd
}

func configureLogging(cmd *cobra.Command, opts *rootOptions) error {
	if !slices.Contains(logFormats, opts.LogFormat) {
		return fmt.Errorf("invalid log format %q: must be one of %v", opts.LogFormat, logFormats)
	}
	logrus.SetOutput(cmd.ErrOrStderr())
	if opts.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	if opts.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
	return nil
}

func defaultDB() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".audxf", "library")
	}
	return filepath.Join(dir, "audxf", "library")
}
