package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/stackhaus/cmd/stackctl/cmdutil"
	"github.com/marmos91/stackhaus/internal/stackreader"
)

var (
	getPath     string
	getIndexID  string
	getTarget   string
	getCheckCRC bool
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Fetch a single record's payload",
	Long: `Fetch the payload identified by --index_id under --path, writing it to
--target (a file path, or "-" for stdout).

Examples:
  stackctl get --path s3://my-bucket/stacks/ --index_id "5,1a2b3c4d5e6f7890" --target out.bin
  stackctl get --path s3://my-bucket/stacks/ --index_id "5,1a2b3c4d5e6f7890" --target - --check_crc`,
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVar(&getPath, "path", "", "stack location (required)")
	getCmd.Flags().StringVar(&getIndexID, "index_id", "", "index identifier to fetch (required)")
	getCmd.Flags().StringVar(&getTarget, "target", "-", `output file, or "-" for stdout`)
	getCmd.Flags().BoolVar(&getCheckCRC, "check_crc", false, "verify the record's CRC32C before returning it")
	_ = getCmd.MarkFlagRequired("path")
	_ = getCmd.MarkFlagRequired("index_id")

	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	store, prefix, err := cmdutil.OpenPath(ctx, cfg, getPath)
	if err != nil {
		return err
	}

	reader := stackreader.New(store, prefix)
	payload, err := reader.Fetch(ctx, getIndexID, getCheckCRC)
	if err != nil {
		return err
	}

	if getTarget == "-" {
		_, err := os.Stdout.Write(payload)
		return err
	}

	return os.WriteFile(getTarget, payload, 0o644)
}
