package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pitidev/workhub/internal/client/errors"
	"github.com/pitidev/workhub/internal/client/output"
	"github.com/pitidev/workhub/internal/client/prompts"
	"github.com/pitidev/workhub/internal/client/validation"
	"github.com/pitidev/workhub/internal/models"
)

// projectFlags holds the editable fields given on the command line
type projectFlags struct {
	name        string
	description string
	status      string
	start       string
	due         string
	clearDates  bool
}

var projFlags projectFlags

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects"},
	Short:   "Manage projects",
	Long:    `Create, list, get, update, and delete your projects.`,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your projects",
	Args:  cobra.NoArgs,
	Run:   runProjectList,
}

var projectGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get project details",
	Args:  cobra.ExactArgs(1),
	Run:   runProjectGet,
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new project",
	Args:  cobra.ExactArgs(1),
	Run:   runProjectCreate,
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a project",
	Long:  `Update a project. Only the flags given are changed; other fields keep their current values.`,
	Args:  cobra.ExactArgs(1),
	Run:   runProjectUpdate,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	Run:   runProjectDelete,
}

func init() {
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectGetCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	projectCmd.AddCommand(projectDeleteCmd)

	for _, cmd := range []*cobra.Command{projectCreateCmd, projectUpdateCmd} {
		cmd.Flags().StringVar(&projFlags.description, "description", "", "Project description")
		cmd.Flags().StringVar(&projFlags.status, "status", "", "Status: planned, active, completed, archived")
		cmd.Flags().StringVar(&projFlags.start, "start", "", "Start date (YYYY-MM-DD)")
		cmd.Flags().StringVar(&projFlags.due, "due", "", "Due date (YYYY-MM-DD)")
	}
	projectUpdateCmd.Flags().StringVar(&projFlags.name, "name", "", "New project name")
	projectUpdateCmd.Flags().BoolVar(&projFlags.clearDates, "clear-dates", false, "Remove start and due dates")

	rootCmd.AddCommand(projectCmd)
}

func runProjectList(cmd *cobra.Command, args []string) {
	c := getAuthenticatedClient()

	projects, err := c.ListProjects(cmd.Context())
	if err != nil {
		errors.HandleClientError(err, "failed to list projects")
	}

	if flagJSON {
		output.OutputJSON(projects, nil)
		return
	}

	if len(projects) == 0 {
		fmt.Println("No projects found")
		return
	}

	tw := output.NewTableWriter()
	tw.WriteHeader("ID", "NAME", "STATUS", "START", "DUE")
	for _, p := range projects {
		tw.WriteRow(p.ID, p.Name, string(p.Status), output.FormatDate(p.StartDate), output.FormatDate(p.DueDate))
	}
	tw.Flush()
}

func runProjectGet(cmd *cobra.Command, args []string) {
	c := getAuthenticatedClient()

	project, err := c.GetProject(cmd.Context(), args[0])
	if err != nil {
		errors.HandleClientError(err, "failed to get project")
	}

	if flagJSON {
		output.OutputJSON(project, nil)
		return
	}
	printProject(project)
}

func runProjectCreate(cmd *cobra.Command, args []string) {
	in, err := buildProjectInput(&models.Project{Name: args[0]}, projFlags, cmd.Flags().Changed)
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}

	c := getAuthenticatedClient()
	project, err := c.CreateProject(cmd.Context(), in)
	if err != nil {
		errors.HandleClientError(err, "failed to create project")
	}

	if flagJSON {
		output.OutputJSON(project, nil)
		return
	}
	output.PrintSuccess(fmt.Sprintf("Project '%s' created (id %s)", project.Name, project.ID))
}

func runProjectUpdate(cmd *cobra.Command, args []string) {
	c := getAuthenticatedClient()

	current, err := c.GetProject(cmd.Context(), args[0])
	if err != nil {
		errors.HandleClientError(err, "failed to get project")
	}

	in, err := buildProjectInput(current, projFlags, cmd.Flags().Changed)
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}

	project, err := c.UpdateProject(cmd.Context(), args[0], in)
	if err != nil {
		errors.HandleClientError(err, "failed to update project")
	}

	if flagJSON {
		output.OutputJSON(project, nil)
		return
	}
	output.PrintSuccess(fmt.Sprintf("Project '%s' updated", project.Name))
}

func runProjectDelete(cmd *cobra.Command, args []string) {
	c := getAuthenticatedClient()
	id := args[0]

	if !flagYes && !flagJSON {
		if !prompts.ConfirmDeletion("project", id) {
			fmt.Println("Deletion cancelled")
			return
		}
	}

	if err := c.DeleteProject(cmd.Context(), id); err != nil {
		errors.HandleClientError(err, "failed to delete project")
	}

	if flagJSON {
		output.OutputJSON(map[string]interface{}{"deleted": true, "id": id}, nil)
		return
	}
	output.PrintSuccess(fmt.Sprintf("Project '%s' deleted", id))
}

// buildProjectInput starts from base and overlays every flag reported as
// changed, then validates the result
func buildProjectInput(base *models.Project, f projectFlags, changed func(string) bool) (*models.ProjectInput, error) {
	in := &models.ProjectInput{
		Name:        base.Name,
		Description: base.Description,
		Status:      base.Status,
		StartDate:   base.StartDate,
		DueDate:     base.DueDate,
	}

	if changed("name") {
		in.Name = f.name
	}
	if changed("description") {
		in.Description = f.description
	}
	if changed("status") {
		status, err := validation.ParseStatus(f.status)
		if err != nil {
			return nil, err
		}
		in.Status = status
	}
	if f.clearDates {
		in.StartDate, in.DueDate = nil, nil
	}
	if changed("start") {
		start, err := validation.ParseDate("start", f.start)
		if err != nil {
			return nil, err
		}
		in.StartDate = start
	}
	if changed("due") {
		due, err := validation.ParseDate("due", f.due)
		if err != nil {
			return nil, err
		}
		in.DueDate = due
	}

	if err := validation.ValidateProjectInput(in); err != nil {
		return nil, err
	}
	return in, nil
}

func printProject(p *models.Project) {
	tw := output.NewTableWriter()
	tw.WriteRow("ID:", p.ID)
	tw.WriteRow("Name:", p.Name)
	tw.WriteRow("Status:", string(p.Status))
	if p.Description != "" {
		tw.WriteRow("Description:", p.Description)
	}
	tw.WriteRow("Start:", output.FormatDate(p.StartDate))
	tw.WriteRow("Due:", output.FormatDate(p.DueDate))
	tw.WriteRow("Created:", p.CreatedAt.Format("2006-01-02 15:04:05"))
	tw.WriteRow("Updated:", p.UpdatedAt.Format("2006-01-02 15:04:05"))
	tw.Flush()
}
