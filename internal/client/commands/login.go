package commands

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pitidev/workhub/internal/client"
	"github.com/pitidev/workhub/internal/client/auth"
	"github.com/pitidev/workhub/internal/client/config"
	"github.com/pitidev/workhub/internal/client/errors"
	"github.com/pitidev/workhub/internal/client/output"
	"github.com/pitidev/workhub/internal/client/prompts"
	"github.com/pitidev/workhub/internal/models"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login [server-url]",
	Short: "Authenticate with a Workhub server",
	Long: `Authenticate with a Workhub server and store the access and refresh tokens.

Server URL can be provided as an argument, via --url, via WORKHUB_URL, or taken
from the previous login. The URL is saved to the config file on success.

Tokens are written to the credential store selected by --credentials or the
'credentials' config key (default ~/.config/workhub/credentials.yaml, 0600).
--token and WORKHUB_TOKEN are ignored by this command.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}

// loginClient resolves the server URL, preferring a positional argument,
// and opens the persistent credential store
func loginClient(args []string) (*client.Client, string) {
	cfg := loadConfig()

	var serverURL string
	if len(args) > 0 {
		serverURL = config.NormalizeURL(args[0])
	} else {
		var err error
		serverURL, err = config.ResolveURL(flagURL, cfg)
		if err != nil {
			errors.ExitWithCode(errors.ExitInvalidArguments, "no server URL specified. Provide server URL as argument or set WORKHUB_URL environment variable")
		}
	}

	store, err := auth.OpenStore(cfg.Credentials)
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}
	return newClient(cfg, serverURL, store), serverURL
}

func runLogin(cmd *cobra.Command, args []string) {
	c, serverURL := loginClient(args)

	email := loginEmail
	if email == "" {
		var err error
		email, err = prompts.PromptEmail()
		if err != nil {
			errors.ExitWithError(err, "")
		}
	}
	if err := models.ValidateEmail(email); err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}

	password, err := prompts.PromptPassword()
	if err != nil {
		errors.ExitWithError(err, "")
	}

	resp, err := c.Login(cmd.Context(), email, password)
	if err != nil {
		if client.StatusCode(err) == http.StatusUnauthorized {
			errors.ExitWithCode(errors.ExitAuthError, "authentication failed: invalid email or password")
		}
		errors.HandleClientError(err, "login failed")
	}

	finishLogin(serverURL, resp, "Logged in to %s as %s")
}

// finishLogin saves the server URL and reports the signed-in user
func finishLogin(serverURL string, resp *models.AuthResponse, format string) {
	if err := config.SaveURL(configPath(), serverURL); err != nil {
		errors.ExitWithError(err, "failed to save server URL")
	}

	if flagJSON {
		output.OutputJSON(map[string]interface{}{
			"server": serverURL,
			"user":   resp.User,
		}, nil)
		return
	}

	who := "(unknown user)"
	if resp.User != nil {
		who = fmt.Sprintf("%s <%s>", resp.User.Name, resp.User.Email)
	}
	output.PrintSuccess(fmt.Sprintf(format, serverURL, who))
}
