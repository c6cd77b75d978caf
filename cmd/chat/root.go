package main

import (
	"fmt"
	"os"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"chat-sync/internal"
)

// Version is set at build time.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "chat-sync",
	Short: "chat-sync — multi-room chat client over a shared remote log",
	Long: "chat-sync keeps a local, merged view of shared chat rooms in sync " +
		"with a remote message log and relays agent replies.",
}

func init() {
	rootCmd.Version = Version
}

// loadConfig reads .env then the environment, failing fast on anything
// missing so a half-configured engine never starts.
func loadConfig() (internal.Config, error) {
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return internal.Config{}, fmt.Errorf("config error: %w", err)
	}
	return config, nil
}

func configOrExit() internal.Config {
	config, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitConfig)
	}
	return config
}
