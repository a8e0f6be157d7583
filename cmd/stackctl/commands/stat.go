package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/marmos91/stackhaus/cmd/stackctl/cmdutil"
	"github.com/marmos91/stackhaus/internal/stackreader"
)

var statCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Show a human table of stacks under a path",
	Long: `Show a table of every stack found under <path>, with its stack_id and
total payload size.

Examples:
  stackctl stat s3://my-bucket/stacks/
  stackctl stat file:///var/lib/stackhaus/stacks/`,
	Args: cobra.ExactArgs(1),
	RunE: runStat,
}

func init() {
	rootCmd.AddCommand(statCmd)
}

// stackInfoList adapts []stackreader.StackInfo for table rendering.
type stackInfoList []stackreader.StackInfo

func (l stackInfoList) Headers() []string { return []string{"STACK_ID", "FULL_SIZE"} }

func (l stackInfoList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, info := range l {
		rows = append(rows, []string{
			fmt.Sprintf("%d", info.StackID),
			humanize.Bytes(info.FullSize),
		})
	}
	return rows
}

func runStat(cmd *cobra.Command, args []string) error {
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
	infos, err := reader.ListAl(ctx)
	if err != nil {
		return err
	}

	return cmdutil.PrintOutput(infos, len(infos) == 0, "No stacks found.", stackInfoList(infos))
}
