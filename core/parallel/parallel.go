// Package parallel runs independent units of work concurrently.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers returns the worker count used when none is configured.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// ForEach calls fn for every index in [0, n) using at most workers
// goroutines and returns the first error. With workers <= 1 the calls run
// sequentially in index order and stop at the first error.
//
// fn must only write to state owned by its index; ForEach returns after every
// started call has finished.
func ForEach(n, workers int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}
	if workers <= 1 || n == 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			return fn(i)
		})
	}
	return g.Wait()
}
