package orchestrator

import "sync"

// runConcurrently implements §5's hand-rolled task-group: each task runs on
// its own goroutine and all are awaited before returning, in the spirit of
// golang.org/x/sync/errgroup but without erroring the whole group on a
// single task's error — callers (the agents) already absorb their own
// failures into degraded output, so the group's only job is to wait for
// all three and report any genuine error back per-task.
func runConcurrently(tasks ...func() error) []error {
	errs := make([]error, len(tasks))
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, task := range tasks {
		go func(i int, task func() error) {
			defer wg.Done()
			errs[i] = task()
		}(i, task)
	}
	wg.Wait()
	return errs
}
