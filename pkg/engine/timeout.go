package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/chazu/uvatlas/pkg/job"
)

// EvalTimeout is the hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

type evalResult struct {
	job    *job.Job
	errors []EvalError
	err    error
}

// waitWithTimeout waits for the result of evaluation gen. A result that
// arrives after a newer evaluation started is discarded. On timeout the
// evaluating goroutine keeps running and its result is dropped.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
) (*job.Job, []EvalError, error) {
	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}
		return res.job, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", EvalTimeout)
	}
}
