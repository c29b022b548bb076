package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"floorlink/internal/catalog"
	"floorlink/internal/domain"
	"floorlink/internal/service"
	"floorlink/internal/ui"
)

var (
	projectFile string
	placeLabel  string
	placeProps  string
)

var placeCmd = &cobra.Command{
	Use:   "place TYPE X Y",
	Short: "Place an item on a project file",
	Long: `Place an item of TYPE at document coordinates X,Y in the project file given
by --project, creating the file if needed. --set takes "key=value,key2=value"
and is applied after the type's defaults.`,
	Example: `  floorlink place router 120 80 -p office.yaml --label core
  floorlink place server 300 80 -p office.yaml --set uplink=router-1,ip=10.0.0.5`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid X %q: %w", args[1], err)
		}
		y, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid Y %q: %w", args[2], err)
		}

		return withSession(cmd.Context(), func(ctx context.Context, s *service.Session) error {
			if err := openProjectFile(ctx, s, projectFile); err != nil {
				return err
			}
			item, err := s.Place(ctx, args[0], domain.Pt(x, y))
			if err != nil {
				return err
			}

			patch := domain.ItemPatch{ID: item.ID}
			if placeLabel != "" {
				patch.Label = &placeLabel
			}
			if placeProps != "" {
				props := item.Properties
				for _, kv := range catalog.ParseProperties(placeProps) {
					props = props.Set(kv.Key, kv.Value)
				}
				patch.Properties = &props
			}
			if patch.Label != nil || patch.Properties != nil {
				if _, err := s.UpdateItem(ctx, patch); err != nil {
					return err
				}
			}

			if err := saveProjectFile(ctx, s, projectFile); err != nil {
				return err
			}
			ui.Success("Placed %s at (%g, %g) in %s", ui.Brand.Sprint(item.ID), x, y, projectFile)
			return nil
		})
	},
}

func init() {
	placeCmd.Flags().StringVarP(&projectFile, "project", "p", defaultProjectFile, "project file")
	placeCmd.Flags().StringVar(&placeLabel, "label", "", "item label (default: the id)")
	placeCmd.Flags().StringVar(&placeProps, "set", "", "properties to set, key=value,...")
	rootCmd.AddCommand(placeCmd)
}
