package commands

import (
	"github.com/spf13/cobra"

	"github.com/pitidev/workhub/internal/client/errors"
	"github.com/pitidev/workhub/internal/client/prompts"
	"github.com/pitidev/workhub/internal/models"
)

var (
	registerName  string
	registerEmail string
)

var registerCmd = &cobra.Command{
	Use:   "register [server-url]",
	Short: "Create an account and log in",
	Long: `Create a Workhub account. On success the returned tokens are stored exactly
as 'login' does, so no separate login is needed.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email (prompted when omitted)")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) {
	c, serverURL := loginClient(args)

	var err error
	name := registerName
	if name == "" {
		if name, err = prompts.PromptName(); err != nil {
			errors.ExitWithError(err, "")
		}
	}
	email := registerEmail
	if email == "" {
		if email, err = prompts.PromptEmail(); err != nil {
			errors.ExitWithError(err, "")
		}
	}
	password, err := prompts.PromptNewPassword()
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}

	req := &models.RegisterRequest{Name: name, Email: email, Password: password}
	if err := models.ValidateRegistration(req); err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}

	resp, err := c.Register(cmd.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		errors.HandleClientError(err, "registration failed")
	}

	finishLogin(serverURL, resp, "Registered on %s as %s")
}
