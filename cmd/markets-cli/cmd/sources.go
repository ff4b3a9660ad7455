package cmd

import (
	"os"
	"strings"

	scrapers "marketdata-backend/lib/scrapers/markets"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Prints the built-in sources and the data types each one provides.",
	Run: func(cmd *cobra.Command, args []string) {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Source", "Browser", "Data types"})

		for _, spec := range scrapers.DefaultSpecs() {
			t.AppendRow(table.Row{
				spec.Name,
				spec.RequiresBrowser,
				strings.Join(spec.DataTypes, ", "),
			})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
