package engine

import "github.com/inovacc/gitroster/internal/model"

// Operation is a clone or pull running in the background.
type Operation struct {
	Op   Op
	repo *model.Repository

	done   chan struct{}
	result model.Snapshot
	err    error
}

func newOperation(op Op, repo *model.Repository) *Operation {
	return &Operation{Op: op, repo: repo, done: make(chan struct{})}
}

// Repository returns the ID of the repository the operation targets.
func (o *Operation) Repository() string {
	return o.repo.ID()
}

// Done is closed when the operation has finished and the repository is
// free for the next operation.
func (o *Operation) Done() <-chan struct{} {
	return o.done
}

// Wait blocks until the operation finishes and returns the final state of
// the repository together with the operation's error.
func (o *Operation) Wait() (model.Snapshot, error) {
	<-o.done
	return o.result, o.err
}

// Err returns the operation's error, or nil while it is still running.
func (o *Operation) Err() error {
	select {
	case <-o.done:
		return o.err
	default:
		return nil
	}
}

func (o *Operation) finish(result model.Snapshot, err error) {
	o.result = result
	o.err = err
	o.repo.Release()
	close(o.done)
}
