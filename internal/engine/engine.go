// Package engine drives clone and pull against a single repository at a
// time and keeps its status consistent.
//
// Each call to [Engine.Clone] or [Engine.Pull] claims the repository, moves
// it into Cloning or Updating, and runs the git work in its own goroutine.
// A second request against a busy repository fails with
// [ErrOperationInProgress]; requests against different repositories run in
// parallel. Every status change is persisted and reported through the
// configured callbacks before the operation's Done channel closes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/inovacc/gitroster/internal/git"
	"github.com/inovacc/gitroster/internal/model"
	"go.uber.org/zap"
)

// NoCommits is recorded as the last commit of a repository without commits.
const NoCommits = "no commits"

// NoChanges is the outcome message of a pull that found nothing new.
const NoChanges = "no changes"

// DefaultIdentity is the committer used for merge commits created by a pull.
var DefaultIdentity = git.Identity{Name: "gitroster", Email: "gitroster@localhost"}

// Backend performs the git work for the engine.
type Backend interface {
	Clone(ctx context.Context, url, path string) (git.Head, error)
	Pull(ctx context.Context, path string, who git.Identity) (git.PullResult, error)
	IsRepository(path string) bool
}

// Change describes one status change of a repository.
type Change struct {
	Op       Op
	Snapshot model.Snapshot
	// Err is set on the change that moved the repository into Error.
	Err error
	// Final is true for the last change of an operation.
	Final bool
}

// Options configures an Engine.
type Options struct {
	// Identity overrides DefaultIdentity.
	Identity git.Identity
	// Persist is called after every status change. Its error is logged and
	// otherwise ignored.
	Persist func() error
	// Notify receives every status change, after Persist.
	Notify func(Change)
	Logger *zap.Logger
}

// Engine runs clone and pull operations.
type Engine struct {
	backend  Backend
	identity git.Identity
	persist  func() error
	notify   func(Change)
	logger   *zap.Logger

	wg sync.WaitGroup
}

// New creates an engine on top of backend.
func New(backend Backend, opts Options) *Engine {
	e := &Engine{
		backend:  backend,
		identity: opts.Identity,
		persist:  opts.Persist,
		notify:   opts.Notify,
		logger:   opts.Logger,
	}

	if e.identity == (git.Identity{}) {
		e.identity = DefaultIdentity
	}

	if e.logger == nil {
		e.logger = zap.NewNop()
	}

	return e
}

// Clone starts a clone of repo's URL into its local path. It returns an
// error without touching the repository when another operation is running
// or the repository is already cloned.
func (e *Engine) Clone(ctx context.Context, repo *model.Repository) (*Operation, error) {
	if !repo.Acquire() {
		return nil, &SyncError{Op: OpClone, Repository: repo.Name(), Err: ErrOperationInProgress}
	}

	snap, err := repo.Transition(model.StatusCloning, "cloning")
	if err != nil {
		repo.Release()
		return nil, &SyncError{Op: OpClone, Repository: repo.Name(), Err: fmt.Errorf("%w: %s", ErrInvalidState, repo.Status())}
	}

	op := newOperation(OpClone, repo)
	e.publish(Change{Op: OpClone, Snapshot: snap})

	e.wg.Add(1)

	go func() {
		defer e.wg.Done()
		e.runClone(ctx, op)
	}()

	return op, nil
}

// Pull starts a pull of repo's current branch. A local path that is not a
// repository moves the repository into Error; the returned operation is
// then already finished and its Wait reports ErrNotARepository.
func (e *Engine) Pull(ctx context.Context, repo *model.Repository) (*Operation, error) {
	if !repo.Acquire() {
		return nil, &SyncError{Op: OpPull, Repository: repo.Name(), Err: ErrOperationInProgress}
	}

	op := newOperation(OpPull, repo)

	if !e.backend.IsRepository(repo.LocalPath()) {
		cause := &SyncError{Op: OpPull, Repository: repo.Name(), Err: fmt.Errorf("%w: %s", ErrNotARepository, repo.LocalPath())}
		e.fail(op, cause)

		return op, nil
	}

	snap, err := repo.Transition(model.StatusUpdating, "updating")
	if err != nil {
		repo.Release()
		return nil, &SyncError{Op: OpPull, Repository: repo.Name(), Err: fmt.Errorf("%w: %s", ErrInvalidState, repo.Status())}
	}

	e.publish(Change{Op: OpPull, Snapshot: snap})

	e.wg.Add(1)

	go func() {
		defer e.wg.Done()
		e.runPull(ctx, op)
	}()

	return op, nil
}

// Wait blocks until every started operation has finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) runClone(ctx context.Context, op *Operation) {
	repo := op.repo
	log := e.logger.With(zap.String("repository", repo.Name()), zap.String("op", string(OpClone)))

	target := repo.LocalPath()

	// The parent is created up front and left in place if the clone fails.
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		e.fail(op, &SyncError{Op: OpClone, Repository: repo.Name(), Err: fmt.Errorf("create parent directory: %w", err)})
		return
	}

	log.Debug("cloning", zap.String("url", repo.URL()), zap.String("path", target))

	head, err := e.backend.Clone(ctx, repo.URL(), target)
	if err != nil {
		e.fail(op, &SyncError{Op: OpClone, Repository: repo.Name(), Err: wrapTransport(err)})
		return
	}

	e.succeed(op, "cloned", head)
	log.Info("cloned", zap.String("branch", head.Branch))
}

func (e *Engine) runPull(ctx context.Context, op *Operation) {
	repo := op.repo
	log := e.logger.With(zap.String("repository", repo.Name()), zap.String("op", string(OpPull)))

	res, err := e.backend.Pull(ctx, repo.LocalPath(), e.identity)
	if err != nil {
		if errors.Is(err, git.ErrNotRepository) {
			err = fmt.Errorf("%w: %w", ErrNotARepository, err)
		} else {
			err = wrapTransport(err)
		}

		e.fail(op, &SyncError{Op: OpPull, Repository: repo.Name(), Err: err})

		return
	}

	message := NoChanges
	if res.Changed {
		message = res.Head.Message
	}

	e.succeed(op, message, res.Head)
	log.Info("pulled", zap.Bool("changed", res.Changed), zap.String("branch", res.Head.Branch))
}

func (e *Engine) succeed(op *Operation, message string, head git.Head) {
	snap, err := op.repo.Complete(model.StatusUpToDate, message, head.Branch, lastCommit(head))
	if err != nil {
		// Only this goroutine owns the repository while it is busy.
		e.fail(op, &SyncError{Op: op.Op, Repository: op.repo.Name(), Err: err})
		return
	}

	e.publish(Change{Op: op.Op, Snapshot: snap, Final: true})
	op.finish(snap, nil)
}

func (e *Engine) fail(op *Operation, cause error) {
	snap, _ := op.repo.Transition(model.StatusError, cause.Error())

	e.logger.Warn("operation failed",
		zap.String("repository", op.repo.Name()),
		zap.String("op", string(op.Op)),
		zap.Error(cause),
	)

	e.publish(Change{Op: op.Op, Snapshot: snap, Err: cause, Final: true})
	op.finish(snap, cause)
}

func (e *Engine) publish(c Change) {
	if e.persist != nil {
		if err := e.persist(); err != nil {
			e.logger.Warn("persist registry", zap.String("repository", c.Snapshot.Name), zap.Error(err))
		}
	}

	if e.notify != nil {
		e.notify(c)
	}
}

func wrapTransport(err error) error {
	return &transportError{hint: git.Hint(err), err: err}
}

func lastCommit(head git.Head) string {
	if !head.HasCommits() {
		return NoCommits
	}

	return head.Message
}
