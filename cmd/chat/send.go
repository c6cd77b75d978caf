package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	chaterrors "chat-sync/errors"
	"chat-sync/runtime"
)

var (
	sendImage   string
	sendRetries int
)

var sendCmd = &cobra.Command{
	Use:   "send <room> <text>",
	Short: "Send one message to a room",
	Args:  cobra.ExactArgs(2),
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendImage, "image", "", "image url to attach")
	sendCmd.Flags().IntVar(&sendRetries, "retries", 2, "resend attempts on write failure")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
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
	if err = waitLive(ctx, e, roomID); err != nil {
		return err
	}

	msg, err := e.service.Send(ctx, args[1], sendImage)
	for attempt := 0; err != nil && errors.Is(err, chaterrors.ErrWriteFailed) && attempt < sendRetries; attempt++ {
		e.log.Warn("Send failed, retrying", "id", msg.ID, "attempt", attempt+1)
		err = e.service.Resend(ctx, msg)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Sent %s to %s\n", msg.ID, roomID)
	return nil
}

func waitLive(ctx context.Context, e *engine, roomID string) error {
	deadline := time.After(10 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		state, err := e.service.State(roomID)
		if err != nil {
			return err
		}
		if state == runtime.StatusLive {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("room %s did not reach live state", roomID)
		case <-ticker.C:
		}
	}
}
