package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nff-go/nff/pkg/module"
)

func newSymbolsCmd(out, errOut io.Writer) *cobra.Command {
	var demangle bool
	var srvCheck bool

	cmd := &cobra.Command{
		Use:   "symbols <module>",
		Short: "List a module's exported symbols",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := module.Default.Open(args[0], srvCheck)
			if err != nil {
				return err
			}
			names, err := rec.Exports()
			if err != nil {
				return err
			}
			for _, n := range names {
				if demangle {
					fmt.Fprintln(out, module.Demangle(n))
				} else {
					fmt.Fprintln(out, n)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&demangle, "demangle", false, "demangle Itanium C++ mangled names")
	cmd.Flags().BoolVar(&srvCheck, "srv-check", true, "prefer the controlling process directory when loading the module")
	return cmd
}
