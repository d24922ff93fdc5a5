package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "linfit",
		Short: "Fit a straight line to CSV data by gradient descent",
		Long: `linfit reads a two-column CSV file (header row with the axis names,
then one x,y pair per line), fits y = a*x + b by gradient descent on
normalized data and reports the line in original units.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	pf.StringVar(&opts.logFormat, "log-format", "", "Log format (auto|console|json)")

	cmd.AddCommand(newTrainCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the linfit version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "linfit %s\n", version)
		},
	}
}
