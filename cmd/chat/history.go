package main

import (
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <room>",
	Short: "Show the locally cached messages of a room",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	config := configOrExit()
	cache, closeDB, err := openCache(config)
	if err != nil {
		return err
	}
	defer func() { _ = closeDB() }()

	messages, err := cache.GetMessages(args[0])
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Author", "Role", "Text"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, msg := range messages {
		table.Append([]string{
			time.UnixMilli(msg.At).Format("15:04:05"),
			msg.AuthorName,
			string(msg.Role),
			msg.Text,
		})
	}
	table.Render()
	return nil
}
