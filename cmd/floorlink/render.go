package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"floorlink/internal/content"
	"floorlink/internal/service"
	"floorlink/internal/ui"
)

const defaultProjectFile = "floorlink.project.yaml"

var (
	renderOut  string
	renderZoom float64
	diagramFmt string
	diagramOut string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a project's floor plan with its item overlay to PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(ctx context.Context, s *service.Session) error {
			if err := openProjectFile(ctx, s, projectFile); err != nil {
				return err
			}
			st, err := s.ContentStatus(ctx)
			if err != nil {
				return err
			}
			switch st.State {
			case content.Failed:
				ui.Warning("Floor plan could not be loaded: %v", st.Err)
			case content.Idle:
				ui.Warning("Project has no floor plan; rendering the overlay only")
			}
			if renderZoom > 0 {
				if _, err := s.SetZoom(ctx, renderZoom); err != nil {
					return err
				}
			}
			return writeOutput(renderOut, func(w io.Writer) error {
				return s.Render(ctx, w)
			})
		})
	},
}

var diagramCmd = &cobra.Command{
	Use:   "diagram",
	Short: "Export a project's connection diagram as DOT or PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(ctx context.Context, s *service.Session) error {
			if err := openProjectFile(ctx, s, projectFile); err != nil {
				return err
			}
			data, err := s.ExportDiagram(ctx, diagramFmt)
			if err != nil {
				return err
			}
			return writeOutput(diagramOut, func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			})
		})
	},
}

// writeOutput writes to path, or stdout for "" and "-".
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	ui.Success("Wrote %s", path)
	return nil
}

func init() {
	renderCmd.Flags().StringVarP(&projectFile, "project", "p", defaultProjectFile, "project file")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "plan.png", "output PNG (- for stdout)")
	renderCmd.Flags().Float64Var(&renderZoom, "zoom", 0, "zoom factor (default: configured initial zoom)")

	diagramCmd.Flags().StringVarP(&projectFile, "project", "p", defaultProjectFile, "project file")
	diagramCmd.Flags().StringVarP(&diagramFmt, "format", "f", "dot", "dot or png")
	diagramCmd.Flags().StringVarP(&diagramOut, "out", "o", "-", "output file (- for stdout)")

	rootCmd.AddCommand(renderCmd, diagramCmd)
}
