package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/astren/core/cmd/astren/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "astren",
		Short: "Astren task lifecycle manager",
		Long:  `Astren keeps a user's task collection in sync with its backend: status sweeps, optimistic mutations, reputation scoring and a local mirror that survives restarts.`,
	}

	rootCmd.AddCommand(commands.NewSyncCommand())
	rootCmd.AddCommand(commands.NewDevServerCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
