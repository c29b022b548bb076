package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"floorlink/internal/service"
	"floorlink/internal/ui"
	"floorlink/internal/watcher"
)

var (
	transferFormat string
	transferOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export NAME",
	Short: "Export a stored project as JSON, YAML or an Ansible inventory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepository(cmd.Context(), func(ctx context.Context, s *service.Session) error {
			if err := s.LoadProject(ctx, args[0]); err != nil {
				return err
			}
			return writeOutput(transferOut, func(w io.Writer) error {
				return s.ExportTo(ctx, transferFormat, w)
			})
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import FILE [NAME]",
	Short: "Store a project file in the database",
	Long: `Import FILE into the project database under NAME (default: the file name).
The format follows the file extension; --format overrides it, which also
allows reading from stdin with FILE "-".`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		name := projectName(path)
		if len(args) == 2 {
			name = args[1]
		}

		return withRepository(cmd.Context(), func(ctx context.Context, s *service.Session) error {
			var err error
			switch {
			case transferFormat != "" && path == "-":
				err = s.ImportFrom(ctx, transferFormat, os.Stdin)
			case transferFormat != "":
				var f *os.File
				if f, err = os.Open(path); err == nil {
					err = s.ImportFrom(ctx, transferFormat, f)
					f.Close()
				}
			default:
				err = watcher.Reload(ctx, s, path)
			}
			if err != nil {
				return err
			}
			if err := s.SaveProject(ctx, name); err != nil {
				return err
			}
			ui.Success("Imported %s as %s", path, ui.Brand.Sprint(name))
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&transferFormat, "format", "f", "yaml", "json, yaml or ansible-inventory")
	exportCmd.Flags().StringVarP(&transferOut, "out", "o", "-", "output file (- for stdout)")
	importCmd.Flags().StringVarP(&transferFormat, "format", "f", "", "input format (default: from extension)")
	rootCmd.AddCommand(exportCmd, importCmd)
}
