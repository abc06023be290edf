package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nff-go/nff/pkg/abi"
	"github.com/nff-go/nff/pkg/nativefunc"
)

func newCallCmd(out, errOut io.Writer) *cobra.Command {
	var convention string
	var srvCheck bool

	cmd := &cobra.Command{
		Use:   "call <module> <identifier> <parameters> [args...]",
		Short: "Resolve a function by symbol or byte pattern and call it",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			modPath, identifier, params := args[0], args[1], args[2]
			callArgs := args[3:]

			sig, err := abi.ParseSignature(params)
			if err != nil {
				return err
			}
			conv, ok := abi.ParseConvention(convention)
			if !ok {
				conv = abi.CDECL
			}

			addr, err := resolveIdentifier(modPath, identifier, srvCheck)
			if err != nil {
				return err
			}

			typedArgs, err := parseCallArgs(sig, callArgs)
			if err != nil {
				return err
			}

			h := nativefunc.New(addr, conv, sig)
			result, err := h.Call(typedArgs...)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%v\n", result)
			return nil
		},
	}
	cmd.Flags().StringVar(&convention, "convention", "cdecl", "calling convention: cdecl, stdcall, thiscall, fastcall")
	cmd.Flags().BoolVar(&srvCheck, "srv-check", true, "prefer the controlling process directory when loading the module")
	return cmd
}
