package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wasmint/wasmint"
	"github.com/wasmint/wasmint/bytecode"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Validate a module without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := wasmint.LoadFile(args[0])
			if err != nil {
				printErrors(cmd.ErrOrStderr(), err)
				return errReported
			}
			showStats, _ := cmd.Flags().GetBool("stats")
			for i := 0; i < module.FunctionCount(); i++ {
				fn := module.FunctionAt(i)
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("ok"), yellow(fn.String()))
				if showStats {
					s := bytecode.ComputeStats(fn)
					fmt.Fprintf(cmd.OutOrStdout(), "   instructions=%d depth=%d scopes=%d branches=%d\n",
						s.InstructionCount, s.MaxDepth, s.ScopeCount, s.BranchCount)
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("stats", false, "Print instruction statistics for each function")
	return cmd
}
