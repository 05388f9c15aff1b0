package interpreter

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"grizzly/interpreter-go/pkg/ast"
	"grizzly/interpreter-go/pkg/runtime"
)

// BatchOptions controls RunBatch. Jobs <= 0 means one run at a time.
type BatchOptions struct {
	Jobs int
	// FailFast cancels the remaining runs after the first failure.
	FailFast bool
}

// BatchResult is the outcome for inputs[Index].
type BatchResult struct {
	Index  int
	Output *runtime.MappingValue
	Access *runtime.AccessTracker
	Err    error
}

// RunBatch runs program once per input, at most opts.Jobs at a time. Results
// are in input order. Per-input failures land in BatchResult.Err; the
// returned error is the first failure when FailFast is set, or a context
// error.
func (i *Interpreter) RunBatch(ctx context.Context, program *ast.Program, inputs []runtime.Value, opts BatchOptions) ([]BatchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]BatchResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Jobs, 1))
	for idx, input := range inputs {
		idx, input := idx, input // per-iteration copy (pre-Go 1.22 loop semantics)
		if err := gctx.Err(); err != nil {
			results[idx] = BatchResult{Index: idx, Err: fmt.Errorf("%w: %v", ErrCanceled, err)}
			continue
		}
		g.Go(func() error {
			res := i.safeRun(gctx, program, input)
			res.Index = idx
			results[idx] = res
			if res.Err != nil && opts.FailFast {
				return fmt.Errorf("input %d: %w", idx, res.Err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// safeRun turns a panic inside one run into that run's error so a batch
// keeps going.
func (i *Interpreter) safeRun(ctx context.Context, program *ast.Program, input runtime.Value) (res BatchResult) {
	defer func() {
		if r := recover(); r != nil {
			res = BatchResult{Err: &ExecutionError{Message: fmt.Sprintf("panic: %v", r)}}
		}
	}()
	var tracker *runtime.AccessTracker
	if i.cfg.TrackAccess {
		tracker = runtime.NewAccessTracker()
	}
	out, err := i.run(ctx, program, input, tracker)
	return BatchResult{Output: out, Access: tracker, Err: err}
}
