package cluster

import (
	"context"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// newRowPool returns a pool running one task per matrix row. The first failing
// task cancels the others.
func newRowPool(ctx context.Context, workers int) *pool.ContextPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return pool.New().WithMaxGoroutines(workers).WithContext(ctx).WithCancelOnError()
}
