package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"grizzly/interpreter-go/pkg/codec"
)

func newWatchCommand(a *app) *cobra.Command {
	opts := &runOptions{inFormat: codec.JSON, outFormat: codec.JSON}
	cmd := &cobra.Command{
		Use:   "watch SCRIPT INPUT",
		Short: "Rerun a script every time it changes on disk",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd, opts, args[0], args[1])
		},
	}
	flags := cmd.Flags()
	flags.Var(&opts.inFormat, "in", "input format (default: from INPUT extension, else json)")
	flags.Var(&opts.outFormat, "out", "output format (default json)")
	flags.StringVar(&opts.schema, "schema", "", "JSON Schema the result must satisfy")
	flags.BoolVar(&opts.report, "report", false, "print the access report to stderr after each run")
	return cmd
}

// watch runs once, then again after every change to the script, until the
// command context ends. Failed runs are reported and watching continues.
func (a *app) watch(cmd *cobra.Command, opts *runOptions, scriptArg, inputArg string) error {
	ctx := cmd.Context()
	rerun := func() {
		if err := a.runOnce(cmd, opts, scriptArg, inputArg, a.stdout); err != nil {
			fmt.Fprintf(a.stderr, "error: %v\n", err)
		}
	}

	rerun()
	if err := a.cache.Watch(ctx); err != nil {
		return err
	}
	a.logger.Info("watching for changes", "script", scriptArg)
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case path, ok := <-a.cache.Changes():
			if !ok {
				return nil
			}
			fmt.Fprintf(a.stderr, "-- %s changed, rerunning\n", path)
			rerun()
		}
	}
}
