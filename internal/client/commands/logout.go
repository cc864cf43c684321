package commands

import (
	"github.com/spf13/cobra"

	"github.com/pitidev/workhub/internal/client/auth"
	"github.com/pitidev/workhub/internal/client/credstore"
	"github.com/pitidev/workhub/internal/client/errors"
	"github.com/pitidev/workhub/internal/client/output"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	Long: `Remove the stored access and refresh tokens.

This operation is idempotent - it succeeds even if no credentials are stored.`,
	Args: cobra.NoArgs,
	Run:  runLogout,
}

func runLogout(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	store, err := auth.OpenStore(cfg.Credentials)
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}

	// Idempotent: removing missing keys is not an error
	if err := credstore.Clear(store); err != nil {
		errors.ExitWithError(err, "failed to remove credentials")
	}

	if flagJSON {
		output.OutputJSON(map[string]bool{"logged_out": true}, nil)
	} else {
		output.PrintSuccess("Logged out successfully")
	}
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
