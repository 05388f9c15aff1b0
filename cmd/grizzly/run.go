package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"grizzly/interpreter-go/pkg/codec"
	"grizzly/interpreter-go/pkg/runtime"
)

type runOptions struct {
	inFormat  codec.Format
	outFormat codec.Format
	output    string
	schema    string
	report    bool
	git       gitOptions
}

func newRunCommand(a *app) *cobra.Command {
	opts := &runOptions{inFormat: codec.JSON, outFormat: codec.JSON}
	cmd := &cobra.Command{
		Use:   "run [SCRIPT] [INPUT]",
		Short: "Run a script against one input record",
		Long: "Run SCRIPT against the record in INPUT (or stdin) and write the result.\n" +
			"SCRIPT may be a file, a script named in grizzly.yml, or omitted to use the project entry.",
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var scriptArg, inputArg string
			if len(args) > 0 {
				scriptArg = args[0]
			}
			if len(args) > 1 {
				inputArg = args[1]
			}
			return a.runOnce(cmd, opts, scriptArg, inputArg, a.stdout)
		},
	}
	flags := cmd.Flags()
	flags.Var(&opts.inFormat, "in", "input format (default: from INPUT extension, else json)")
	flags.Var(&opts.outFormat, "out", "output format (default: from --output extension, else json)")
	flags.StringVarP(&opts.output, "output", "o", "", "write the result to this file instead of stdout")
	flags.StringVar(&opts.schema, "schema", "", "JSON Schema the result must satisfy")
	flags.BoolVar(&opts.report, "report", false, "print the access report to stderr")
	opts.git.register(cmd)
	return cmd
}

func (a *app) runOnce(cmd *cobra.Command, opts *runOptions, scriptArg, inputArg string, stdout io.Writer) error {
	ctx := cmd.Context()
	s, err := a.loadScript(ctx, scriptArg, opts.git)
	if err != nil {
		return err
	}
	if opts.schema != "" {
		s.schema = opts.schema
	}

	inFormat := pickFormat(cmd, "in", opts.inFormat, inputArg, a.projectFormat(false))
	input, err := a.readInput(inputArg, inFormat)
	if err != nil {
		return err
	}

	interp := a.interpreterFor(s)
	var (
		out     *runtime.MappingValue
		tracker *runtime.AccessTracker
	)
	if interp.Config().TrackAccess {
		out, tracker, err = interp.RunTracked(ctx, s.program, input, nil)
	} else {
		out, err = interp.Run(ctx, s.program, input)
	}
	if opts.report {
		fmt.Fprint(a.stderr, tracker.Report())
	}
	if err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	if err := a.validate(s, out); err != nil {
		return err
	}

	outFormat := pickFormat(cmd, "out", opts.outFormat, opts.output, a.projectFormat(true))
	data, err := codec.Encode(outFormat, out)
	if err != nil {
		return err
	}
	if opts.output != "" && opts.output != "-" {
		return os.WriteFile(opts.output, data, 0o644)
	}
	_, err = stdout.Write(data)
	return err
}
