package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"chat-sync/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch <room>",
	Short: "Follow a room live, printing messages as they merge",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	config := configOrExit()
	e, err := buildEngine(config)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	roomID := args[0]
	if err = e.service.Activate(ctx, roomID); err != nil {
		return err
	}

	header := fmt.Sprintf("  ====== watching %s ======", roomID)
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(header))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Print by id, not by index: a cross-client message with an older
	// timestamp merges into the middle of the sorted snapshot.
	printed := make(map[string]struct{})
	for {
		select {
		case <-stop:
			fmt.Println("\nStopping...")
			return e.service.Deactivate()
		case <-ctx.Done():
			return e.service.Deactivate()
		case <-e.notifier.Changes():
			snapshot, err := e.service.Snapshot(roomID)
			if err != nil {
				return err
			}
			for _, msg := range takeUnprinted(printed, snapshot) {
				printMessage(msg)
			}
		}
	}
}

// takeUnprinted returns the snapshot entries not seen before and marks them,
// wherever the merge sorted them.
func takeUnprinted(printed map[string]struct{}, snapshot []domain.Message) []domain.Message {
	var fresh []domain.Message
	for _, msg := range snapshot {
		if _, ok := printed[msg.ID]; ok {
			continue
		}
		printed[msg.ID] = struct{}{}
		fresh = append(fresh, msg)
	}
	return fresh
}

func printMessage(msg domain.Message) {
	stamp := time.UnixMilli(msg.At).Format("15:04:05")
	author := color.New(color.FgCyan).Render(msg.AuthorName)
	if msg.Role == domain.RoleAgent {
		author = color.New(color.FgMagenta).Render(msg.AuthorName)
	}
	fmt.Printf("[%s] %s: %s\n", stamp, author, msg.Text)
}
