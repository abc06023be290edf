package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nff-go/nff/pkg/abi"
	"github.com/nff-go/nff/pkg/nativefunc"
)

func newHookCmd(out, errOut io.Writer) *cobra.Command {
	var convention string
	var srvCheck bool
	var setArgs []string
	var override string

	cmd := &cobra.Command{
		Use:   "hook <module> <identifier> <parameters> [args...]",
		Short: "Install a demo pre-hook, call the target once hooked, then unhook",
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

			before, err := h.Call(typedArgs...)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "before hook: %v\n", before)

			sets, err := parseSetArgFlags(setArgs)
			if err != nil {
				return err
			}

			overrideVal := override
			hasOverrideFlag := cmd.Flags().Changed("override")
			pre := func(args []any) ([]any, abi.HookAction, any) {
				if hasOverrideFlag {
					v, convErr := parseTagValue(sig.Return, overrideVal)
					if convErr != nil {
						return args, abi.ActionContinue, nil
					}
					return args, abi.ActionOverride, v
				}
				if len(sets) == 0 {
					return args, abi.ActionContinue, nil
				}
				modified := append([]any(nil), args...)
				for _, s := range sets {
					if s.index < 0 || s.index >= len(modified) {
						continue
					}
					v, convErr := parseTagValue(sig.Args[s.index], s.value)
					if convErr != nil {
						continue
					}
					modified[s.index] = v
				}
				return modified, abi.ActionModified, nil
			}

			if err := h.Hook(pre, nil); err != nil {
				return err
			}
			defer h.Unhook()

			after, err := h.Call(typedArgs...)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "after hook: %v\n", after)
			return nil
		},
	}
	cmd.Flags().StringVar(&convention, "convention", "cdecl", "calling convention: cdecl, stdcall, thiscall, fastcall")
	cmd.Flags().BoolVar(&srvCheck, "srv-check", true, "prefer the controlling process directory when loading the module")
	cmd.Flags().StringArrayVar(&setArgs, "set-arg", nil, "N=V: replace argument N with V in the pre-hook callback")
	cmd.Flags().StringVar(&override, "override", "", "override the return value instead of calling the original")
	return cmd
}
