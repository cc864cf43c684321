package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pitidev/workhub/internal/client/errors"
	"github.com/pitidev/workhub/internal/client/output"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user",
	Long: `Check authentication status by calling the server's /auth/me endpoint.

An expired access token is renewed transparently with the stored refresh token.

Resolves server URL and credentials using normal precedence:
- URL: --url flag > WORKHUB_URL env var > URL saved by login
- Token: --token flag > WORKHUB_TOKEN env var > credential store`,
	Args: cobra.NoArgs,
	Run:  runWhoami,
}

func runWhoami(cmd *cobra.Command, args []string) {
	c := getAuthenticatedClient()

	user, err := c.Me(cmd.Context())
	if err != nil {
		if flagJSON {
			output.OutputJSON(map[string]interface{}{
				"server":        c.BaseURL(),
				"authenticated": false,
			}, err)
		}
		errors.HandleClientError(err, "")
	}

	if flagJSON {
		output.OutputJSON(map[string]interface{}{
			"server":        c.BaseURL(),
			"authenticated": true,
			"user":          user,
		}, nil)
		return
	}
	output.PrintSuccess(fmt.Sprintf("Authenticated to %s as %s <%s>", c.BaseURL(), user.Name, user.Email))
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
