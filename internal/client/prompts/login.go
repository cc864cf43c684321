package prompts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// stdin is shared across prompts so buffered input is not lost between calls
var stdin = bufio.NewReader(os.Stdin)

var stdout io.Writer = os.Stdout

var stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// PromptEmail prompts for an email address (visible input)
func PromptEmail() (string, error) {
	return promptLine("Email: ", "email")
}

// PromptName prompts for a display name (visible input)
func PromptName() (string, error) {
	return promptLine("Name: ", "name")
}

// PromptPassword prompts for password (hidden input when stdin is a terminal)
func PromptPassword() (string, error) {
	return promptSecret("Password: ")
}

// PromptNewPassword prompts twice and fails when the entries differ
func PromptNewPassword() (string, error) {
	password, err := promptSecret("Password: ")
	if err != nil {
		return "", err
	}
	confirm, err := promptSecret("Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}

func promptLine(label, field string) (string, error) {
	fmt.Fprint(stdout, label)
	line, err := stdin.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read %s: %w", field, err)
	}
	return strings.TrimSpace(line), nil
}

func promptSecret(label string) (string, error) {
	if !stdinIsTerminal() {
		// piped input: read a plain line
		return promptLine(label, "password")
	}

	fmt.Fprint(stdout, label)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(stdout) // newline after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}
