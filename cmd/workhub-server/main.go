package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pitidev/workhub/internal/cli"
)

var version = "1.0.0"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "workhub-server",
	Short: "Workhub API server",
	Long: `Workhub Server provides a REST API for managing projects. Clients
authenticate with short-lived access tokens and renew them with refresh tokens.`,
	Version: version,
}

func init() {
	rootCmd.AddCommand(cli.ServerCmd)
	rootCmd.AddCommand(cli.AuthCmd)

	rootCmd.SetVersionTemplate(`{{.Version}}
`)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
