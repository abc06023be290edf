package main

import (
	"io"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "nff",
		Short:         "nff is a host scripting layer over a reflective native-function bridge",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.AddCommand(
		newCallCmd(out, errOut),
		newScanCmd(out, errOut),
		newHookCmd(out, errOut),
		newDescribeCmd(out, errOut),
		newSymbolsCmd(out, errOut),
	)
	return rootCmd
}
