package runner

import (
	"github.com/ethereum/go-ethereum/log"
)

// Resources hands out Runs whose temporary files are removed when the scoped
// function returns, whether it returns normally, with an error or by panicking.
type Resources struct {
	env Env
	log log.Logger
}

// NewResources creates a new Resources for env.
func NewResources(env Env, logger log.Logger) *Resources {
	if logger == nil {
		logger = log.Root()
	}
	return &Resources{env: env, log: logger}
}

// Do allocates a Run, passes it to fn and cleans it up afterwards. The error
// returned by fn is returned unchanged; a panic in fn propagates after cleanup.
func (r *Resources) Do(fn func(run *Run) error) error {
	run, err := newRun(r.env, r.log)
	if err != nil {
		return err
	}
	defer run.Cleanup()

	return fn(run)
}
