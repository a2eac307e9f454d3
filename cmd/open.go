package cmd

import (
	"fmt"

	"github.com/inovacc/gitroster/internal/shell"
	"github.com/spf13/cobra"
)

func newOpenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open [name|url]",
		Short: "Open a repository folder in the file manager",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}

			snap, err := a.pick(reg, args, "Open repository", nil)
			if err != nil {
				return err
			}

			if err := shell.Reveal(snap.LocalPath); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(a.stdout, "Opened %s\n", snap.LocalPath)

			return nil
		},
	}
}
