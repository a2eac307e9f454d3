// Package registry owns the ordered list of tracked repositories.
//
// A Registry validates and applies membership changes, persists the list
// through a store.Store after every change, dispatches clone and pull to
// the sync engine and reports everything that happens as Events.
// Subscribers receive events on a single goroutine, one at a time, and
// only ever see model.Snapshot values.
package registry

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/inovacc/gitroster/internal/engine"
	"github.com/inovacc/gitroster/internal/git"
	"github.com/inovacc/gitroster/internal/giturl"
	"github.com/inovacc/gitroster/internal/model"
	"github.com/inovacc/gitroster/internal/store"
	"go.uber.org/zap"
)

// InterruptedMessage is recorded on repositories that were cloning or
// updating when the registry was last saved.
const InterruptedMessage = "interrupted"

// Options configures a Registry.
type Options struct {
	// BaseDirectory is the parent of the local path of new repositories.
	BaseDirectory string
	Store         store.Store
	Backend       engine.Backend
	// Identity is the committer used for pull merges.
	Identity git.Identity
	Logger   *zap.Logger
}

// Registry is the in-memory collection of tracked repositories.
type Registry struct {
	mu       sync.RWMutex
	repos    []*model.Repository
	baseDir  string
	selected string
	status   string
	closed   bool

	// saveMu keeps snapshot and write of one save together so that an
	// older list never overwrites a newer one.
	saveMu sync.Mutex

	// startMu is held for reading from lookup until the engine has claimed
	// the repository, and for writing by Load, so a reload never replaces
	// a repository that is about to become busy.
	startMu sync.RWMutex

	store  store.Store
	engine *engine.Engine
	events *dispatcher
	logger *zap.Logger
}

// New creates an empty registry. Call Load to read the persisted list.
func New(opts Options) (*Registry, error) {
	if opts.Store == nil {
		return nil, errors.New("registry: store is required")
	}

	if opts.Backend == nil {
		return nil, errors.New("registry: git backend is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Registry{
		baseDir: opts.BaseDirectory,
		store:   opts.Store,
		events:  newDispatcher(),
		logger:  logger,
	}

	r.engine = engine.New(opts.Backend, engine.Options{
		Identity: opts.Identity,
		Persist:  r.Save,
		Notify:   r.onChange,
		Logger:   logger.Named("engine"),
	})

	return r, nil
}

// Add tracks url under a name derived from its last path segment.
func (r *Registry) Add(url string) (model.Snapshot, error) {
	return r.AddNamed(url, "")
}

// AddNamed tracks url under name. An empty name is derived from the URL.
// The name also becomes the directory under the base directory.
func (r *Registry) AddNamed(url, name string) (model.Snapshot, error) {
	url = giturl.Clean(url)
	if url == "" {
		return model.Snapshot{}, ErrEmptyURL
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = giturl.RepoName(url)
	}

	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return model.Snapshot{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	r.mu.Lock()

	if r.closed {
		r.mu.Unlock()
		return model.Snapshot{}, ErrClosed
	}

	if idx := r.indexByURL(url); idx >= 0 {
		r.mu.Unlock()
		return model.Snapshot{}, fmt.Errorf("%w: %s", ErrDuplicateURL, r.repos[idx].URL())
	}

	repo := model.NewRepository(name, url, filepath.Join(r.baseDir, name))
	r.repos = append(r.repos, repo)
	r.status = fmt.Sprintf("added %s", name)
	r.mu.Unlock()

	snap := repo.Snapshot()
	r.logger.Info("repository added", zap.String("name", name), zap.String("url", url), zap.String("path", snap.LocalPath))
	r.events.emit(Event{Kind: EventAdded, Snapshot: snap})

	// A failed save keeps the repository in memory.
	_ = r.Save()

	return snap, nil
}

// Remove stops tracking the repository with the given ID. Files on disk are
// left alone. Removing an unknown ID is a no-op.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()

	idx := r.indexByID(id)
	if idx < 0 {
		r.mu.Unlock()
		return nil
	}

	repo := r.repos[idx]
	r.repos = append(r.repos[:idx:idx], r.repos[idx+1:]...)

	if r.selected == id {
		r.selected = ""
	}

	r.status = fmt.Sprintf("removed %s", repo.Name())
	r.mu.Unlock()

	r.logger.Info("repository removed", zap.String("name", repo.Name()), zap.String("path", repo.LocalPath()))
	r.events.emit(Event{Kind: EventRemoved, Snapshot: repo.Snapshot()})

	return r.Save()
}

// Select makes the repository with the given ID the current selection.
func (r *Registry) Select(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexByID(id) < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	r.selected = id

	return nil
}

// ClearSelection drops the current selection.
func (r *Registry) ClearSelection() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.selected = ""
}

// Selected returns the selected repository, if any.
func (r *Registry) Selected() (model.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.selected == "" {
		return model.Snapshot{}, false
	}

	idx := r.indexByID(r.selected)
	if idx < 0 {
		return model.Snapshot{}, false
	}

	return r.repos[idx].Snapshot(), true
}

// Find looks up a repository by ID, then by URL, then by name. URL and name
// comparisons ignore case; the first match in list order wins.
func (r *Registry) Find(query string) (model.Snapshot, error) {
	query = strings.TrimSpace(query)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if repo := r.find(query); repo != nil {
		return repo.Snapshot(), nil
	}

	return model.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, query)
}

// Clone starts cloning the repository with the given ID.
func (r *Registry) Clone(ctx context.Context, id string) (*engine.Operation, error) {
	r.startMu.RLock()
	defer r.startMu.RUnlock()

	repo, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	r.setStatus(fmt.Sprintf("cloning %s", repo.Name()))

	op, err := r.engine.Clone(ctx, repo)
	if err != nil {
		r.reject(repo, err)
		return nil, err
	}

	return op, nil
}

// Pull starts pulling the repository with the given ID.
func (r *Registry) Pull(ctx context.Context, id string) (*engine.Operation, error) {
	r.startMu.RLock()
	defer r.startMu.RUnlock()

	repo, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	r.setStatus(fmt.Sprintf("pulling %s", repo.Name()))

	op, err := r.engine.Pull(ctx, repo)
	if err != nil {
		r.reject(repo, err)
		return nil, err
	}

	return op, nil
}

// Wait blocks until every started clone and pull has finished.
func (r *Registry) Wait() {
	r.engine.Wait()
}

// Load replaces the in-memory list with the persisted one. A missing store
// is an empty registry. Any other read failure also leaves the registry
// empty and is reported as a warning; Load itself only fails while an
// operation is running. Repositories persisted as cloning or updating are
// marked as Error.
func (r *Registry) Load() error {
	r.startMu.Lock()
	defer r.startMu.Unlock()

	r.mu.Lock()

	for _, repo := range r.repos {
		if repo.Busy() {
			r.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrOperationInProgress, repo.Name())
		}
	}

	records, err := r.store.Load()

	var warning error

	switch {
	case errors.Is(err, store.ErrNotFound):
		records = nil
	case err != nil:
		records = nil
		warning = err
	}

	repos := make([]*model.Repository, 0, len(records))
	interrupted := 0
	seen := make(map[string]struct{}, len(records))

	for _, rec := range records {
		key := giturl.Key(rec.URL)
		if _, dup := seen[key]; dup {
			r.logger.Warn("skipping duplicate repository", zap.String("url", rec.URL))
			continue
		}

		seen[key] = struct{}{}

		repo := model.FromRecord(rec)
		if repo.Reconcile(InterruptedMessage) {
			interrupted++
		}

		repos = append(repos, repo)
	}

	r.repos = repos
	r.selected = ""
	r.status = fmt.Sprintf("loaded %d repositories", len(repos))

	if warning != nil {
		r.status = fmt.Sprintf("could not load repositories: %v", warning)
	}
	r.mu.Unlock()

	if warning != nil {
		r.logger.Warn("load registry", zap.Error(warning))
		r.events.emit(Event{Kind: EventWarning, Err: warning, Message: "registry could not be loaded, starting empty"})
	}

	r.logger.Debug("registry loaded", zap.Int("repositories", len(repos)), zap.Int("interrupted", interrupted))
	r.events.emit(Event{Kind: EventLoaded})

	if interrupted > 0 {
		_ = r.Save()
	}

	return nil
}

// Refresh reloads the list from the store.
func (r *Registry) Refresh() error {
	return r.Load()
}

// Save persists the current list. A failure is logged, reported as a
// warning event and returned; the in-memory state is kept either way.
func (r *Registry) Save() error {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	r.mu.RLock()
	records := make([]model.Record, 0, len(r.repos))
	for _, repo := range r.repos {
		records = append(records, repo.Record())
	}
	r.mu.RUnlock()

	if err := r.store.Save(records); err != nil {
		r.logger.Error("save registry", zap.Error(err))
		r.setStatus(fmt.Sprintf("could not save repositories: %v", err))
		r.events.emit(Event{Kind: EventWarning, Err: err, Message: "registry could not be saved"})

		return err
	}

	return nil
}

// LastSaved returns when the list was last written to the store.
func (r *Registry) LastSaved() (time.Time, bool) {
	savedAt, err := r.store.SavedAt()
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			r.logger.Debug("read save time", zap.Error(err))
		}

		return time.Time{}, false
	}

	return savedAt, true
}

// SetBaseDirectory changes the parent directory used by later Adds.
func (r *Registry) SetBaseDirectory(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.baseDir = path
}

// BaseDirectory returns the parent directory used by Add.
func (r *Registry) BaseDirectory() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.baseDir
}

// Records returns snapshots of all repositories in list order.
func (r *Registry) Records() []model.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Snapshot, 0, len(r.repos))
	for _, repo := range r.repos {
		out = append(out, repo.Snapshot())
	}

	return out
}

// Len returns the number of tracked repositories.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.repos)
}

// Status returns a one-line description of the last thing that happened.
func (r *Registry) Status() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.status
}

// Subscribe registers fn for all later events and returns a function that
// unregisters it.
func (r *Registry) Subscribe(fn func(Event)) func() {
	return r.events.subscribe(fn)
}

// Close waits for running operations, delivers pending events and closes
// the store.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}

	r.closed = true
	r.mu.Unlock()

	r.engine.Wait()
	r.events.close()

	return r.store.Close()
}

func (r *Registry) onChange(c engine.Change) {
	snap := c.Snapshot

	if c.Final {
		if c.Err != nil {
			r.setStatus(fmt.Sprintf("%s failed: %s", snap.Name, errorLine(c.Err)))
		} else {
			r.setStatus(fmt.Sprintf("%s: %s", snap.Name, snap.Message))
		}
	}

	r.events.emit(Event{Kind: EventChanged, Snapshot: snap, Op: c.Op, Final: c.Final, Err: c.Err, Message: snap.Message})
}

// reject reports an operation that was refused before it started.
func (r *Registry) reject(repo *model.Repository, err error) {
	r.setStatus(errorLine(err))
	r.logger.Info("operation refused", zap.String("repository", repo.Name()), zap.Error(err))
	r.events.emit(Event{Kind: EventWarning, Snapshot: repo.Snapshot(), Err: err, Message: errorLine(err)})
}

func (r *Registry) lookup(id string) (*model.Repository, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, ErrClosed
	}

	idx := r.indexByID(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return r.repos[idx], nil
}

func (r *Registry) setStatus(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status = s
}

func (r *Registry) find(query string) *model.Repository {
	if query == "" {
		return nil
	}

	if idx := r.indexByID(query); idx >= 0 {
		return r.repos[idx]
	}

	if idx := r.indexByURL(query); idx >= 0 {
		return r.repos[idx]
	}

	for _, repo := range r.repos {
		if strings.EqualFold(repo.Name(), query) {
			return repo
		}
	}

	return nil
}

func (r *Registry) indexByID(id string) int {
	for i, repo := range r.repos {
		if repo.ID() == id {
			return i
		}
	}

	return -1
}

func (r *Registry) indexByURL(url string) int {
	for i, repo := range r.repos {
		if giturl.Equal(repo.URL(), url) {
			return i
		}
	}

	return -1
}

// errorLine keeps the first line of an error for the status string.
func errorLine(err error) string {
	line, _, _ := strings.Cut(err.Error(), "\n")
	return line
}
