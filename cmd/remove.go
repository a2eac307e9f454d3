package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCmd(a *app) *cobra.Command {
	var yes bool

	removeCmd := &cobra.Command{
		Use:     "remove [name|url]",
		Aliases: []string{"rm"},
		Short:   "Stop tracking a repository",
		Long: `Remove a repository from the list. Only the entry is removed; the cloned
files remain on disk.

Without arguments an interactive list is shown when running in a terminal.
The removal is confirmed on stdin unless --yes is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}

			snap, err := a.pick(reg, args, "Remove repository", nil)
			if err != nil {
				return err
			}

			if !yes && !a.promptConfirm(fmt.Sprintf("Remove %s from the list? Files in %s are kept. [y/N]: ", snap.Name, snap.LocalPath)) {
				reg.ClearSelection()
				_, _ = fmt.Fprintln(a.stdout, "Cancelled.")

				return nil
			}

			if err := reg.Remove(snap.ID); err != nil {
				return fmt.Errorf("failed to remove repository: %w", err)
			}

			_, _ = fmt.Fprintf(a.stdout, "Removed %s (files kept in %s)\n", snap.Name, snap.LocalPath)

			return nil
		},
	}

	removeCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return removeCmd
}
