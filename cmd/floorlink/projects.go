package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"floorlink/internal/service"
	"floorlink/internal/ui"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Short:   "Manage projects stored in the database",
	Aliases: []string{"project"},
}

var projectsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List stored projects",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepository(cmd.Context(), func(ctx context.Context, s *service.Session) error {
			list, err := s.ListProjects(ctx)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No projects found")
				return nil
			}

			rows := make([][]string, len(list))
			for i, p := range list {
				plan := "-"
				if p.Content != nil {
					plan = p.Content.Name
				}
				rows[i] = []string{p.Name, strconv.Itoa(p.Items), plan, p.UpdatedAt.Local().Format("2006-01-02 15:04")}
			}
			fmt.Printf("Projects (%d):\n", len(list))
			ui.Table([]string{"NAME", "ITEMS", "FLOOR PLAN", "UPDATED"}, rows)
			return nil
		})
	},
}

var projectsDeleteCmd = &cobra.Command{
	Use:     "delete NAME",
	Short:   "Delete a stored project",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepository(cmd.Context(), func(ctx context.Context, s *service.Session) error {
			if err := s.DeleteProject(ctx, args[0]); err != nil {
				return err
			}
			ui.Success("Deleted %s", args[0])
			return nil
		})
	},
}

// projectName derives a stored project name from a file path.
func projectName(path string) string {
	base := filepath.Base(path)
	for {
		ext := filepath.Ext(base)
		if ext == "" || ext == base {
			break
		}
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "-" || base == "." {
		return "imported"
	}
	return base
}

func init() {
	projectsCmd.AddCommand(projectsListCmd, projectsDeleteCmd)
	rootCmd.AddCommand(projectsCmd)
}
