package model

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Status is the sync state of a tracked repository.
type Status string

const (
	StatusNotCloned Status = "NotCloned"
	StatusCloning   Status = "Cloning"
	StatusUpToDate  Status = "UpToDate"
	StatusUpdating  Status = "Updating"
	StatusError     Status = "Error"
)

// ParseStatus converts a persisted status string back to a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusNotCloned, StatusCloning, StatusUpToDate, StatusUpdating, StatusError:
		return st, nil
	case "":
		return StatusNotCloned, nil
	default:
		return "", fmt.Errorf("unknown repository status %q", s)
	}
}

// InFlight reports whether the status belongs to a running operation.
func (s Status) InFlight() bool {
	return s == StatusCloning || s == StatusUpdating
}

// CanTransition reports whether moving from s to next is a legal step.
func (s Status) CanTransition(next Status) bool {
	switch next {
	case StatusCloning:
		// Error is not terminal: a failed clone can be retried.
		return s == StatusNotCloned || s == StatusError
	case StatusUpdating:
		return s == StatusUpToDate || s == StatusError
	case StatusUpToDate:
		return s.InFlight()
	case StatusError:
		// Any failure, including a failed precondition, lands in Error.
		return true
	}

	return false
}

// Record is the persisted form of one tracked repository.
type Record struct {
	Name       string `yaml:"name" json:"name"`
	URL        string `yaml:"url" json:"url"`
	LocalPath  string `yaml:"local_path" json:"local_path"`
	Status     Status `yaml:"status" json:"status"`
	Branch     string `yaml:"branch" json:"branch"`
	LastCommit string `yaml:"last_commit" json:"last_commit"`
}

// Snapshot is an immutable, point-in-time view of a Repository.
type Snapshot struct {
	Record

	ID      string `yaml:"-" json:"id"`
	Message string `yaml:"-" json:"message,omitempty"`
	Version uint64 `yaml:"-" json:"-"`
}

// Repository is a tracked repository shared between the registry and the
// sync engine. Identity fields are fixed at construction; status, branch,
// last commit and message change under mu.
type Repository struct {
	id        string
	name      string
	url       string
	localPath string

	mu         sync.RWMutex
	status     Status
	branch     string
	lastCommit string
	message    string
	version    uint64

	busy atomic.Bool
}

// NewRepository creates a repository in the NotCloned state.
func NewRepository(name, url, localPath string) *Repository {
	return &Repository{
		id:        uuid.NewString(),
		name:      name,
		url:       url,
		localPath: localPath,
		status:    StatusNotCloned,
	}
}

// FromRecord rebuilds a repository from its persisted form with a fresh ID.
func FromRecord(rec Record) *Repository {
	status := rec.Status
	if status == "" {
		status = StatusNotCloned
	}

	return &Repository{
		id:         uuid.NewString(),
		name:       rec.Name,
		url:        rec.URL,
		localPath:  rec.LocalPath,
		status:     status,
		branch:     rec.Branch,
		lastCommit: rec.LastCommit,
	}
}

func (r *Repository) ID() string        { return r.id }
func (r *Repository) Name() string      { return r.name }
func (r *Repository) URL() string       { return r.url }
func (r *Repository) LocalPath() string { return r.localPath }

// Status returns the current status.
func (r *Repository) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.status
}

// Snapshot copies the repository state under a single read lock.
func (r *Repository) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshotLocked()
}

// Record returns the persisted form of the repository.
func (r *Repository) Record() Record {
	return r.Snapshot().Record
}

// Transition moves the repository to next and records message. It fails if
// the step is not allowed by the state machine.
func (r *Repository) Transition(next Status, message string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.status.CanTransition(next) {
		return Snapshot{}, fmt.Errorf("repository %s: illegal status change %s -> %s", r.name, r.status, next)
	}

	r.status = next
	r.message = message
	r.version++

	return r.snapshotLocked(), nil
}

// Complete moves the repository to next and records the outcome message
// together with the branch and last commit, all under one lock, so no
// snapshot sees the new head with the old status.
func (r *Repository) Complete(next Status, message, branch, lastCommit string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.status.CanTransition(next) {
		return Snapshot{}, fmt.Errorf("repository %s: illegal status change %s -> %s", r.name, r.status, next)
	}

	r.status = next
	r.message = message
	r.branch = branch
	r.lastCommit = lastCommit
	r.version++

	return r.snapshotLocked(), nil
}

// Reconcile forces a stale in-flight status to Error. Used only when a
// registry is loaded and no operation can be running.
func (r *Repository) Reconcile(message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.status.InFlight() {
		return false
	}

	r.status = StatusError
	r.message = message
	r.version++

	return true
}

// Acquire marks the repository busy. It returns false if an operation is
// already running against it.
func (r *Repository) Acquire() bool {
	return r.busy.CompareAndSwap(false, true)
}

// Release clears the busy mark set by Acquire.
func (r *Repository) Release() {
	r.busy.Store(false)
}

// Busy reports whether an operation is running.
func (r *Repository) Busy() bool {
	return r.busy.Load()
}

func (r *Repository) snapshotLocked() Snapshot {
	return Snapshot{
		Record: Record{
			Name:       r.name,
			URL:        r.url,
			LocalPath:  r.localPath,
			Status:     r.status,
			Branch:     r.branch,
			LastCommit: r.lastCommit,
		},
		ID:      r.id,
		Message: r.message,
		Version: r.version,
	}
}
