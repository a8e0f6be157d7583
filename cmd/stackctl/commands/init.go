package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/stackhaus/cmd/stackctl/cmdutil"
	"github.com/marmos91/stackhaus/internal/cli/prompt"
	"github.com/marmos91/stackhaus/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively bootstrap a config.yaml",
	Long: `init walks through the settings a new stackhaus deployment needs —
the allocation service URL and the S3 bucket stacks live under — and
writes them to the config file location (the standard config directory,
or --config if set).

Examples:
  stackctl init
  stackctl init --config /etc/stackhaus/config.yaml`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cmdutil.Flags.ConfigPath
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	_, statErr := os.Stat(path)
	exists := statErr == nil
	if !initForce && exists {
		overwrite, err := prompt.Confirm(fmt.Sprintf("config already exists at %s, overwrite", path), false)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
		if !overwrite {
			fmt.Println("aborted")
			return nil
		}
	}

	controller, err := prompt.Input("Allocation service URL", "http://localhost:8900")
	if err != nil {
		return cmdutil.HandleAbort(err)
	}

	bucket, err := prompt.InputRequired("S3 bucket")
	if err != nil {
		return cmdutil.HandleAbort(err)
	}

	region, err := prompt.InputOptional("S3 region")
	if err != nil {
		return cmdutil.HandleAbort(err)
	}

	endpoint, err := prompt.InputOptional("S3 endpoint (blank for AWS)")
	if err != nil {
		return cmdutil.HandleAbort(err)
	}

	cfg := &config.Config{
		Controller: controller,
		S3: config.S3Config{
			Bucket:   bucket,
			Region:   region,
			Endpoint: endpoint,
		},
	}
	config.ApplyDefaults(cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if err := config.SaveConfig(cfg, path); err != nil {
		return err
	}

	fmt.Printf("wrote config to %s\n", path)
	return nil
}
