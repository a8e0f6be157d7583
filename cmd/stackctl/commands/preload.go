package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/stackhaus/cmd/stackctl/cmdutil"
	"github.com/marmos91/stackhaus/internal/cli/timeutil"
	"github.com/marmos91/stackhaus/pkg/allocclient"
)

var (
	preloadStackID  uint64
	preloadReplicas int
)

var preloadCmd = &cobra.Command{
	Use:   "preload",
	Short: "Request N preload replicas for a stack",
	Long: `Ask the allocation service to converge --stack-id's preload replica
count to --replicas, printing the resulting assignments.

Examples:
  stackctl preload --stack-id 5 --replicas 3`,
	RunE: runPreload,
}

func init() {
	preloadCmd.Flags().Uint64Var(&preloadStackID, "stack-id", 0, "stack_id to preload (required)")
	preloadCmd.Flags().IntVar(&preloadReplicas, "replicas", 1, "target replica count")
	_ = preloadCmd.MarkFlagRequired("stack-id")

	rootCmd.AddCommand(preloadCmd)
}

// assignmentList adapts []allocclient.PreloadAssignment for table rendering.
type assignmentList []allocclient.PreloadAssignment

func (l assignmentList) Headers() []string {
	return []string{"ID", "STACK_ID", "STATE", "CREATED_AT"}
}

func (l assignmentList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, a := range l {
		rows = append(rows, []string{
			a.ID,
			fmt.Sprintf("%d", a.StackID),
			a.State,
			timeutil.FormatTime(a.CreatedAt.Format(time.RFC3339)),
		})
	}
	return rows
}

func runPreload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	client := cmdutil.AllocClient(cfg)
	assignments, err := client.PreLoad(ctx, preloadStackID, preloadReplicas)
	if err != nil {
		return err
	}

	return cmdutil.PrintOutput(assignments, len(assignments) == 0, "No preload assignments.", assignmentList(assignments))
}
