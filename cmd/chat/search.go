package main

import (
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"chat-sync/internal"
	"chat-sync/search"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <room> <query>",
	Short: "Full-text search over the locally indexed messages of a room",
	Args:  cobra.ExactArgs(2),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum hits")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	config := configOrExit()
	log := internal.GetLoggerFromString(config.LogLevel)

	index, err := search.NewIndex(config.BlugeFilepath, log)
	if err != nil {
		return err
	}
	defer func() { _ = index.Close() }()

	hits, err := index.Search(cmd.Context(), args[0], args[1], searchLimit)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Role", "Text"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, hit := range hits {
		table.Append([]string{
			time.UnixMilli(hit.At).Format("15:04:05"),
			string(hit.Role),
			hit.Text,
		})
	}
	table.Render()
	return nil
}
