package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nff-go/nff/pkg/module"
	"github.com/nff-go/nff/pkg/sigscan"
)

func newScanCmd(out, errOut io.Writer) *cobra.Command {
	var srvCheck bool

	cmd := &cobra.Command{
		Use:   "scan <module> <pattern>",
		Short: "Scan a module's image for a byte pattern and print the matching address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			modPath, patternStr := args[0], args[1]

			pattern, err := sigscan.ParsePattern(patternStr)
			if err != nil {
				return err
			}
			rec, err := module.Default.Open(modPath, srvCheck)
			if err != nil {
				return err
			}
			image, err := rec.Image()
			if err != nil {
				return err
			}
			addr, err := sigscan.Find(image, rec.Base, pattern)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "0x%x\n", uint64(addr))
			return nil
		},
	}
	cmd.Flags().BoolVar(&srvCheck, "srv-check", true, "prefer the controlling process directory when loading the module")
	return cmd
}
