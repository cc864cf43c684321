package prompts

import (
	"fmt"
	"strings"
)

// ConfirmDeletion prompts user to confirm a deletion operation
// Returns true if user confirms, false otherwise
func ConfirmDeletion(resourceType, resourceName string) bool {
	fmt.Fprintf(stdout, "⚠ This will delete %s '%s'\n", resourceType, resourceName)
	fmt.Fprint(stdout, "Are you sure? [y/N]: ")

	response, err := stdin.ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
