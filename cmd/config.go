package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change configuration",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}

			if cfg.File != "" {
				_, _ = fmt.Fprintf(a.stdout, "# %s\n", cfg.File)
			}

			enc := yaml.NewEncoder(a.stdout)
			enc.SetIndent(2)

			if err := enc.Encode(cfg); err != nil {
				return err
			}

			return enc.Close()
		},
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change a configuration value",
	}

	setBaseCmd := &cobra.Command{
		Use:   "base-directory <path>",
		Short: "Set the directory new repositories are cloned under",
		Long: `Set the base directory. Only repositories added afterwards use it; existing
repositories keep their local path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.config(); err != nil {
				return err
			}

			file, err := a.loader.SaveBaseDirectory(args[0])
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(a.stdout, "Base directory set to %s in %s\n", args[0], file)

			return nil
		},
	}

	setCmd.AddCommand(setBaseCmd)
	configCmd.AddCommand(showCmd, setCmd)

	return configCmd
}
