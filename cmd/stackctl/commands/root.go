// Package commands implements the stackctl command tree.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/stackhaus/cmd/stackctl/cmdutil"
)

var rootCmd = &cobra.Command{
	Use:   "stackctl",
	Short: "Control-plane CLI for the stackhaus storage engine",
	Long: `stackctl inspects stacks in an object store and talks to the
allocation service: stat and ls read stack contents directly, get fetches
a single record, bind and preload manage the allocation service's source
and replica bookkeeping for a stack.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cmdutil.Flags.ConfigPath, "config", "", "path to config file (defaults to the standard config directory)")
	flags.StringVar(&cmdutil.Flags.Controller, "controller", "", "allocation service URL (overrides config)")
	flags.StringVarP(&cmdutil.Flags.Output, "output", "o", "table", "output format: table, json, yaml")
	flags.StringVar(&cmdutil.Flags.S3Region, "s3-region", "", "S3 region (overrides config)")
	flags.StringVar(&cmdutil.Flags.S3Endpoint, "s3-endpoint", "", "S3 endpoint (overrides config)")
	flags.StringVar(&cmdutil.Flags.S3AccessKeyID, "s3-access-key-id", "", "S3 access key id (overrides config)")
	flags.StringVar(&cmdutil.Flags.S3SecretAccessKey, "s3-secret-access-key", "", "S3 secret access key (overrides config)")
	flags.BoolVar(&cmdutil.Flags.S3ForcePathStyle, "s3-force-path-style", false, "force path-style S3 addressing")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
