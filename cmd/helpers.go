package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/gitroster/internal/cli"
	"github.com/inovacc/gitroster/internal/model"
	"github.com/inovacc/gitroster/internal/registry"
)

// pick resolves the repository named by args, or asks for one with a
// picker listing the repositories that satisfy keep. The result becomes
// the registry's selection.
func (a *app) pick(reg *registry.Registry, args []string, title string, keep func(model.Snapshot) bool) (model.Snapshot, error) {
	snap, err := a.resolve(reg, args, title, keep)
	if err != nil {
		return model.Snapshot{}, err
	}

	if err := reg.Select(snap.ID); err != nil {
		return model.Snapshot{}, err
	}

	return snap, nil
}

func (a *app) resolve(reg *registry.Registry, args []string, title string, keep func(model.Snapshot) bool) (model.Snapshot, error) {
	if len(args) > 0 {
		return reg.Find(args[0])
	}

	if !a.interactive() {
		return model.Snapshot{}, fmt.Errorf("%w: pass a repository name, URL or ID", errNoSelection)
	}

	candidates := filter(reg.Records(), keep)
	if len(candidates) == 0 {
		return model.Snapshot{}, fmt.Errorf("%w: no matching repositories", errNoSelection)
	}

	p := tea.NewProgram(cli.NewPicker(title, candidates), tea.WithInput(a.stdin), tea.WithOutput(a.stdout))

	final, err := p.Run()
	if err != nil {
		return model.Snapshot{}, err
	}

	snap, ok := final.(cli.PickerModel).Selected()
	if !ok {
		return model.Snapshot{}, errNoSelection
	}

	return snap, nil
}

func filter(snaps []model.Snapshot, keep func(model.Snapshot) bool) []model.Snapshot {
	if keep == nil {
		return snaps
	}

	out := make([]model.Snapshot, 0, len(snaps))

	for _, s := range snaps {
		if keep(s) {
			out = append(out, s)
		}
	}

	return out
}

func cloneable(s model.Snapshot) bool {
	return s.Status.CanTransition(model.StatusCloning)
}

func pullable(s model.Snapshot) bool {
	return s.Status.CanTransition(model.StatusUpdating)
}

func printRecord(a *app, icon string, s model.Snapshot, detail string) {
	if detail == "" {
		_, _ = fmt.Fprintf(a.stdout, "%s %s\n", icon, s.Name)
		return
	}

	_, _ = fmt.Fprintf(a.stdout, "%s %s: %s\n", icon, s.Name, detail)
}

// promptConfirm asks the user for confirmation and returns true if they confirm
// prompt should include the question (e.g., "Delete this file? [y/N]: ")
func (a *app) promptConfirm(prompt string) bool {
	_, _ = fmt.Fprint(a.stdout, prompt)

	if a.stdin == nil {
		_, _ = fmt.Fprintln(a.stdout)
		return false
	}

	var response string

	_, _ = fmt.Fscanln(a.stdin, &response)

	return response == "y" || response == "Y"
}
