package cmd

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/gitroster/internal/cli"
	"github.com/inovacc/gitroster/internal/engine"
	"github.com/inovacc/gitroster/internal/model"
	"github.com/inovacc/gitroster/internal/registry"
	"golang.org/x/sync/errgroup"
)

type startFunc func(ctx context.Context, id string) (*engine.Operation, error)

// syncAll starts one operation per target and waits for all of them. With
// a single target its error is returned as is; otherwise failures are
// counted.
func (a *app) syncAll(ctx context.Context, reg *registry.Registry, verb string, targets []model.Snapshot, start startFunc) error {
	if len(targets) == 0 {
		_, _ = fmt.Fprintln(a.stdout, "Nothing to do")
		return nil
	}

	if a.interactive() {
		return a.syncView(ctx, reg, verb, targets, start)
	}

	var (
		mu     sync.Mutex
		errs   = make([]error, 0, len(targets))
		single = len(targets) == 1
		g      errgroup.Group
	)

	report := func(snap model.Snapshot, err error) {
		mu.Lock()
		defer mu.Unlock()

		if err != nil {
			errs = append(errs, err)

			if !single {
				printRecord(a, "✗", snap, err.Error())
			}

			return
		}

		printRecord(a, "✓", snap, cli.Describe(snap))
	}

	for _, t := range targets {
		op, err := start(ctx, t.ID)
		if err != nil {
			report(t, err)
			continue
		}

		g.Go(func() error {
			snap, err := op.Wait()
			report(snap, err)

			return nil
		})
	}

	_ = g.Wait()

	return summarize(errs, len(targets))
}

func (a *app) syncView(ctx context.Context, reg *registry.Registry, verb string, targets []model.Snapshot, start startFunc) error {
	feed := cli.NewEventFeed(reg)
	defer feed.Stop()

	m := cli.NewSyncModel(verb, targets, feed.C)
	ops := make([]*engine.Operation, 0, len(targets))
	errs := make([]error, 0, len(targets))

	for _, t := range targets {
		op, err := start(ctx, t.ID)
		if err != nil {
			m.Finish(t.ID, err)
			errs = append(errs, err)

			continue
		}

		ops = append(ops, op)
	}

	p := tea.NewProgram(m, tea.WithInput(a.stdin), tea.WithOutput(a.stdout))
	if _, err := p.Run(); err != nil {
		return err
	}

	for _, op := range ops {
		if _, err := op.Wait(); err != nil {
			errs = append(errs, err)
		}
	}

	return summarize(errs, len(targets))
}

func summarize(errs []error, total int) error {
	switch {
	case len(errs) == 0:
		return nil
	case total == 1:
		return errs[0]
	default:
		return fmt.Errorf("%d of %d repositories failed", len(errs), total)
	}
}
