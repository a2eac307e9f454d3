package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAddCmd(a *app) *cobra.Command {
	var name string

	addCmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Track a remote repository",
		Long: `Add a remote repository to the list. The name defaults to the last path
segment of the URL without its extension, and the repository will be cloned
to <base directory>/<name>. Nothing is cloned until "gitroster clone".`,
		Example: `  gitroster add https://github.com/owner/project.git
  gitroster add git@github.com:owner/project.git --name project-fork`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}

			snap, err := reg.AddNamed(args[0], name)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(a.stdout, "Added %s → %s\n", snap.Name, snap.LocalPath)

			return nil
		},
	}

	addCmd.Flags().StringVar(&name, "name", "", "Display name and directory name (default derived from the URL)")

	return addCmd
}
