package cmd

import (
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	scrapers "marketdata-backend/lib/scrapers/markets"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	scrapeDataTypes []string
	scrapeBrowser   bool
	scrapeCeiling   time.Duration
)

func init() {
	scrapeCmd.Flags().StringSliceVarP(
		&scrapeDataTypes, "type", "t", nil,
		"Only scrape the given data types.",
	)
	scrapeCmd.Flags().BoolVar(
		&scrapeBrowser, "browser", false,
		"Include sources that need javascript rendering.",
	)
	scrapeCmd.Flags().DurationVar(
		&scrapeCeiling, "ceiling", time.Minute*2,
		"Bound on the whole scrape run.",
	)
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [sources...]",
	Short: "Runs a scrape against the given sources (all of them by default) and prints the results.",
	Run: func(cmd *cobra.Command, args []string) {
		manager, err := scrapers.NewManager(
			scrapers.DefaultSpecs(),
			scrapers.ScraperOptions{},
			scrapers.ManagerOptions{
				ScrapeCeiling:         scrapeCeiling,
				DisableBrowserSources: !scrapeBrowser,
			},
		)
		if err != nil {
			log.Fatal(err)
		}

		output := manager.RunScrape(cmd.Context(), args, scrapeDataTypes)

		sourceNames := make([]string, 0, len(output.Data))
		for name := range output.Data {
			sourceNames = append(sourceNames, name)
		}
		sort.Strings(sourceNames)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Source", "Data type", "Records", "First record"})

		for _, name := range sourceNames {
			result := output.Data[name]

			dataTypes := make([]string, 0, len(result))
			for dataType := range result {
				dataTypes = append(dataTypes, dataType)
			}
			sort.Strings(dataTypes)

			for _, dataType := range dataTypes {
				records := result[dataType]
				first := ""
				if len(records) > 0 {
					first = fmt.Sprintf("%s @ %s", records[0]["nombre"], records[0]["precio"])
				}
				t.AppendRow(table.Row{name, dataType, len(records), first})
			}
		}

		t.SetStyle(table.StyleRounded)
		t.Render()

		for _, scrapeErr := range output.Errors {
			fmt.Fprintf(os.Stderr, "source %s failed: %s\n", scrapeErr.Source, scrapeErr.Error)
		}
		if len(output.Errors) > 0 {
			os.Exit(1)
		}
	},
}
