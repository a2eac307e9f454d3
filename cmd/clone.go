package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/inovacc/gitroster/internal/giturl"
	"github.com/inovacc/gitroster/internal/model"
	"github.com/inovacc/gitroster/internal/registry"
	"github.com/spf13/cobra"
)

func newCloneCmd(a *app) *cobra.Command {
	var all bool

	cloneCmd := &cobra.Command{
		Use:   "clone [name|url]",
		Short: "Clone tracked repositories",
		Long: `Clone a tracked repository into its local path. A URL that is not tracked
yet is added first. With --all every repository that was never cloned, or
whose last operation failed, is cloned in parallel.

Without arguments an interactive list is shown when running in a terminal.`,
		Example: `  gitroster clone project
  gitroster clone https://github.com/owner/project.git
  gitroster clone --all`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.New("--all cannot be combined with a repository")
			}

			reg, err := a.registry()
			if err != nil {
				return err
			}

			var targets []model.Snapshot

			switch {
			case all:
				targets = filter(reg.Records(), cloneable)
			case len(args) > 0:
				snap, err := findOrAdd(a, reg, args[0])
				if err != nil {
					return err
				}

				targets = []model.Snapshot{snap}
			default:
				snap, err := a.pick(reg, nil, "Clone repository", cloneable)
				if err != nil {
					return err
				}

				targets = []model.Snapshot{snap}
			}

			return a.syncAll(cmd.Context(), reg, "Cloning", targets, reg.Clone)
		},
	}

	cloneCmd.Flags().BoolVar(&all, "all", false, "Clone every repository that is not cloned yet")

	return cloneCmd
}

// findOrAdd resolves query, adding it first when it is an untracked remote.
func findOrAdd(a *app, reg *registry.Registry, query string) (model.Snapshot, error) {
	snap, err := reg.Find(query)
	if err == nil || !errors.Is(err, registry.ErrNotFound) {
		return snap, err
	}

	if !giturl.IsURL(query) && !filepath.IsAbs(query) {
		return model.Snapshot{}, err
	}

	snap, err = reg.Add(query)
	if err != nil {
		return model.Snapshot{}, err
	}

	_, _ = fmt.Fprintf(a.stdout, "Added %s → %s\n", snap.Name, snap.LocalPath)

	return snap, nil
}
