package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/stackhaus/cmd/stackctl/cmdutil"
)

var (
	bindStackID uint64
	bindPath    string
	bindCancel  bool
)

var bindCmd = &cobra.Command{
	Use:   "bind",
	Short: "Register or deregister a stack's source location",
	Long: `Register --path as a source location for --stack-id with the allocation
service. With --cancel, deregisters it instead.

Examples:
  stackctl bind --stack-id 5 --path s3://my-bucket/stacks/
  stackctl bind --stack-id 5 --path s3://my-bucket/stacks/ --cancel`,
	RunE: runBind,
}

func init() {
	bindCmd.Flags().Uint64Var(&bindStackID, "stack-id", 0, "stack_id to bind (required)")
	bindCmd.Flags().StringVar(&bindPath, "path", "", "source location to register (required)")
	bindCmd.Flags().BoolVar(&bindCancel, "cancel", false, "deregister instead of register")
	_ = bindCmd.MarkFlagRequired("stack-id")
	_ = bindCmd.MarkFlagRequired("path")

	rootCmd.AddCommand(bindCmd)
}

func runBind(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	client := cmdutil.AllocClient(cfg)
	if bindCancel {
		if err := client.DeRegisterStackSource(ctx, bindStackID, []string{bindPath}); err != nil {
			return err
		}
		fmt.Printf("deregistered %s from stack %d\n", bindPath, bindStackID)
		return nil
	}

	if err := client.RegisterStackSource(ctx, bindStackID, []string{bindPath}); err != nil {
		return err
	}
	fmt.Printf("registered %s for stack %d\n", bindPath, bindStackID)
	return nil
}
