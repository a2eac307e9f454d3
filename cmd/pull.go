package cmd

import (
	"errors"

	"github.com/inovacc/gitroster/internal/model"
	"github.com/spf13/cobra"
)

func newPullCmd(a *app) *cobra.Command {
	var all bool

	pullCmd := &cobra.Command{
		Use:   "pull [name|url]",
		Short: "Pull cloned repositories",
		Long: `Fetch and integrate the tracked remote into the current branch of a cloned
repository, then record its branch and last commit. With --all every
cloned repository is pulled in parallel.`,
		Example: `  gitroster pull project
  gitroster pull --all`,
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

			if all {
				targets = filter(reg.Records(), pullable)
			} else {
				snap, err := a.pick(reg, args, "Pull repository", pullable)
				if err != nil {
					return err
				}

				targets = []model.Snapshot{snap}
			}

			return a.syncAll(cmd.Context(), reg, "Pulling", targets, reg.Pull)
		},
	}

	pullCmd.Flags().BoolVar(&all, "all", false, "Pull every cloned repository")

	return pullCmd
}
