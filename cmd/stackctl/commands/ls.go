package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/stackhaus/cmd/stackctl/cmdutil"
	"github.com/marmos91/stackhaus/internal/codec"
	"github.com/marmos91/stackhaus/internal/stackreader"
)

var lsCmd = &cobra.Command{
	Use:   "ls <path>",
	Short: "List one \"{stack_id},{index_id}\" per record per stack",
	Long: `List every record under <path>, one "{stack_id},{index_id}" line per
record, across every stack found.

Examples:
  stackctl ls s3://my-bucket/stacks/`,
	Args: cobra.ExactArgs(1),
	RunE: runLs,
}

func init() {
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	store, prefix, err := cmdutil.OpenPath(ctx, cfg, args[0])
	if err != nil {
		return err
	}

	reader := stackreader.New(store, prefix)
	stackIDs, err := reader.List(ctx)
	if err != nil {
		return err
	}

	for stackID := range stackIDs {
		records, err := reader.ListStack(ctx, stackID)
		if err != nil {
			return err
		}
		for _, rec := range records {
			id := codec.IndexID{StackID: stackID, OffsetData: rec.OffsetData, Cookie: rec.Cookie}
			fmt.Println(id.String())
		}
	}

	return nil
}
