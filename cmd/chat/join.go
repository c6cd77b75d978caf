package main

import (
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/repositories"
)

var (
	joinName   string
	joinAvatar string
)

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Create or replace the participant profile",
	RunE:  runJoin,
}

func init() {
	joinCmd.Flags().StringVar(&joinName, "name", "", "display name")
	joinCmd.Flags().StringVar(&joinAvatar, "avatar", "", "avatar url")
	_ = joinCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(joinCmd)
}

func runJoin(cmd *cobra.Command, args []string) error {
	config := configOrExit()

	profile := domain.Profile{Name: joinName, Avatar: joinAvatar}
	if err := validator.New().Struct(profile); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidProfile, err)
	}

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := repositories.NewProfileRepository(db).Save(profile); err != nil {
		return err
	}
	fmt.Printf("Joined as %s\n", profile.Name)
	return nil
}
