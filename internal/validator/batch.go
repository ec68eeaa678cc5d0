package validator

import (
	"context"
	"sync"
)

// Outcome pairs a runner with what its run produced. Exactly one of
// Result/Err is meaningful; Err is always an *ExecError.
type Outcome struct {
	ID     string
	Result Result
	Err    error
}

// RunBatch runs independent validators concurrently and returns their
// outcomes in declared order. Validators in a batch are read-only with
// respect to the tree, so they may overlap; the caller applies fail-fast
// semantics over the declared order, which keeps the merged outcome
// stable no matter which process finishes first.
func RunBatch(ctx context.Context, runners []Runner, projectRoot, file string) []Outcome {
	outcomes := make([]Outcome, len(runners))
	var wg sync.WaitGroup
	for i, runner := range runners {
		wg.Add(1)
		go func(i int, runner Runner) {
			defer wg.Done()
			result, err := runner.Run(ctx, projectRoot, file)
			outcomes[i] = Outcome{ID: runner.ID(), Result: result, Err: err}
		}(i, runner)
	}
	wg.Wait()
	return outcomes
}

// FirstFailure returns the first declared outcome that failed or errored,
// or nil when every validator passed.
func FirstFailure(outcomes []Outcome) *Outcome {
	for i := range outcomes {
		if outcomes[i].Err != nil || !outcomes[i].Result.Passed {
			return &outcomes[i]
		}
	}
	return nil
}
