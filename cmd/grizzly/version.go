package main

import (
	"fmt"
	goruntime "runtime"
	"strings"

	"github.com/spf13/cobra"

	"grizzly/interpreter-go/pkg/codec"
)

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// No project file is needed to print a version.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := make([]string, 0, len(codec.Formats()))
			for _, f := range codec.Formats() {
				formats = append(formats, f.String())
			}
			fmt.Fprintf(a.stdout, "%s (%s, formats: %s)\n", cliToolVersion, goruntime.Version(), strings.Join(formats, ", "))
			return nil
		},
	}
}
