package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nff-go/nff/pkg/iniconfig"
)

func newDescribeCmd(out, errOut io.Writer) *cobra.Command {
	var windows bool

	cmd := &cobra.Command{
		Use:   "describe <config.ini>",
		Short: "Parse a descriptor config file and dump its parsed records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := iniconfig.Parse(f)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "size = %d\n", doc.Size)

			funcs, err := iniconfig.BuildFunctions(doc, windows)
			if err != nil {
				return err
			}
			for _, name := range sortedKeys(funcs) {
				r := funcs[name]
				fmt.Fprintf(out, "function %s: identifier=%s parameters=%s convention=%s\n",
					name, r.Identifier, r.Parameters.String(), r.Convention)
			}

			virtuals, err := iniconfig.BuildVirtuals(doc, windows)
			if err != nil {
				return err
			}
			for _, name := range sortedKeys(virtuals) {
				r := virtuals[name]
				fmt.Fprintf(out, "virtual_function %s: slot=%d parameters=%s convention=%s\n",
					name, r.Slot, r.Parameters.String(), r.Convention)
			}

			attrs, err := iniconfig.BuildAttributes(doc, windows)
			if err != nil {
				return err
			}
			for _, name := range sortedKeys(attrs) {
				r := attrs[name]
				fmt.Fprintf(out, "attribute %s: converter=%s offset=0x%x is_array=%v\n",
					name, r.Converter, r.Offset, r.IsArray)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&windows, "windows", false, "resolve _nt overrides instead of _posix")
	return cmd
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
