package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wasmint/wasmint/bytecode"
	"github.com/wasmint/wasmint/dis"
)

func newDisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis FILE",
		Short: "Print the instruction trees of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return disHandler(cmd, args[0])
		},
	}
	cmd.Flags().String("func", "", "Function to disassemble")
	return cmd
}

// disHandler prints the module without checking it, so malformed trees can
// be inspected.
func disHandler(cmd *cobra.Command, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	module, err := bytecode.Decode(src)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	if name, _ := cmd.Flags().GetString("func"); name != "" {
		fn, err := module.Lookup(name)
		if err != nil {
			return err
		}
		return dis.Fprint(out, fn)
	}
	for i := 0; i < module.FunctionCount(); i++ {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := dis.Fprint(out, module.FunctionAt(i)); err != nil {
			return err
		}
	}
	return nil
}
