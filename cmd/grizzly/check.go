package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"grizzly/interpreter-go/pkg/ast"
	"grizzly/interpreter-go/pkg/builtins"
	"grizzly/interpreter-go/pkg/typechecker"
)

func newCheckCommand(a *app) *cobra.Command {
	var (
		printAST bool
		git      gitOptions
	)
	cmd := &cobra.Command{
		Use:   "check [SCRIPT]",
		Short: "Parse and check a script without running it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			s, err := a.loadScript(cmd.Context(), arg, git)
			if err != nil {
				return err
			}
			if printAST {
				text, err := ast.Canonical(s.program)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, text)
				return nil
			}
			entry := a.interpreterFor(s).Config().EntryFunction
			diags, err := typechecker.New(nil).CheckProgram(s.program, entry)
			if err != nil {
				return err
			}
			for _, d := range diags {
				fmt.Fprintf(a.stderr, "%s: %s\n", s.name, d)
			}
			if len(diags) > 0 {
				a.logger.Debug("check failed", "script", s.name, "problems", len(diags))
				return fmt.Errorf("%s: %d problem%s found", s.name, len(diags), builtins.Plural(len(diags)))
			}
			fmt.Fprintf(a.stdout, "%s: ok (%d functions, %d imports)\n", s.name, len(s.program.Functions), len(s.program.Imports))
			return nil
		},
	}
	cmd.Flags().BoolVar(&printAST, "ast", false, "print the canonical AST as JSON")
	git.register(cmd)
	return cmd
}
