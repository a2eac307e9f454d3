package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/inovacc/gitroster/internal/model"
	"github.com/spf13/cobra"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newListCmd(a *app) *cobra.Command {
	var asJSON bool

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tracked repositories",
		Long: `Print every tracked repository in list order with its status, branch and
last commit, followed by the time the list was last saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}

			records := reg.Records()

			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")

				return enc.Encode(records)
			}

			if len(records) == 0 {
				_, _ = fmt.Fprintln(a.stdout, `No repositories tracked. Use "gitroster add <url>" to add one.`)
				return nil
			}

			_, _ = fmt.Fprintln(a.stdout, renderTable(records))

			if savedAt, ok := reg.LastSaved(); ok {
				_, _ = fmt.Fprintf(a.stdout, "Last updated: %s\n", savedAt.Local().Format(time.DateTime))
			}

			return nil
		},
	}

	listCmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	return listCmd
}

func renderTable(records []model.Snapshot) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("NAME", "STATUS", "BRANCH", "LAST COMMIT", "PATH").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		})

	for _, r := range records {
		t.Row(r.Name, string(r.Status), r.Branch, r.LastCommit, r.LocalPath)
	}

	return t.Render()
}
