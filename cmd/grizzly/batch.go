package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"grizzly/interpreter-go/pkg/codec"
	"grizzly/interpreter-go/pkg/interpreter"
	grt "grizzly/interpreter-go/pkg/runtime"
)

type batchOptions struct {
	jobs      int
	outDir    string
	inFormat  codec.Format
	outFormat codec.Format
	failFast  bool
	git       gitOptions
}

func newBatchCommand(a *app) *cobra.Command {
	opts := &batchOptions{inFormat: codec.JSON, outFormat: codec.JSON}
	cmd := &cobra.Command{
		Use:   "batch SCRIPT INPUT...",
		Short: "Run a script against many input files concurrently",
		Long: "Compile SCRIPT once and run it against every INPUT. Results go to\n" +
			"--out-dir as <input name>.<format>, or to stdout as one document per input.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd, opts, args[0], args[1:])
		},
	}
	flags := cmd.Flags()
	flags.IntVarP(&opts.jobs, "jobs", "j", runtime.NumCPU(), "inputs run at once")
	flags.StringVar(&opts.outDir, "out-dir", "", "directory for per-input results")
	flags.Var(&opts.inFormat, "in", "input format (default: from each INPUT extension)")
	flags.Var(&opts.outFormat, "out", "output format (default json)")
	flags.BoolVar(&opts.failFast, "fail-fast", false, "stop at the first failing input")
	opts.git.register(cmd)
	return cmd
}

func (a *app) runBatch(cmd *cobra.Command, opts *batchOptions, scriptArg string, paths []string) error {
	ctx := cmd.Context()
	s, err := a.loadScript(ctx, scriptArg, opts.git)
	if err != nil {
		return err
	}

	inputs := make([]grt.Value, len(paths))
	for i, path := range paths {
		format := pickFormat(cmd, "in", opts.inFormat, path, a.projectFormat(false))
		input, err := a.readInput(path, format)
		if err != nil {
			return err
		}
		inputs[i] = input
	}

	interp := a.interpreterFor(s)
	results, err := interp.RunBatch(ctx, s.program, inputs, interpreter.BatchOptions{
		Jobs:     opts.jobs,
		FailFast: opts.failFast,
	})
	if err != nil {
		return err
	}

	outFormat := pickFormat(cmd, "out", opts.outFormat, "", a.projectFormat(true))
	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return err
		}
	}
	failed := 0
	for _, res := range results {
		path := paths[res.Index]
		if res.Err == nil {
			res.Err = a.validate(s, res.Output)
		}
		if res.Err != nil {
			failed++
			fmt.Fprintf(a.stderr, "%s: %v\n", path, res.Err)
			continue
		}
		data, err := codec.Encode(outFormat, res.Output)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if opts.outDir == "" {
			if _, err := a.stdout.Write(data); err != nil {
				return err
			}
			continue
		}
		target := filepath.Join(opts.outDir, batchOutputName(path, outFormat))
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return err
		}
		a.logger.Info("batch result written", "input", path, "output", target)
	}
	fmt.Fprintf(a.stderr, "%d of %d inputs succeeded\n", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%d inputs failed", failed)
	}
	return nil
}

func batchOutputName(input string, format codec.Format) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "." + format.String()
}
