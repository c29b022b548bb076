package main

import (
	"strings"

	"github.com/spf13/cobra"

	"floorlink/internal/catalog"
	"floorlink/internal/config"
	"floorlink/internal/ui"
)

var (
	defineIcon  string
	defineProps string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List or define item types",
}

var catalogListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the item types available for placement",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.LoadAll(cfg.Catalog.Dir)
		if err != nil {
			return err
		}
		var rows [][]string
		for _, t := range cat.All() {
			rows = append(rows, []string{t.Name, t.Icon, strings.Join(t.Properties.Keys(), ", "), t.Description})
		}
		ui.Table([]string{"TYPE", "ICON", "DEFAULT PROPERTIES", "DESCRIPTION"}, rows)
		return nil
	},
}

var catalogDefineCmd = &cobra.Command{
	Use:     "define NAME",
	Short:   "Define a new item type in the user catalog",
	Example: `  floorlink catalog define printer --icon printer --props ip=,uplink=,tray=A4`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Catalog.Dir
		if dir == "" {
			dir = config.DefaultCatalogDir()
		}
		cat := catalog.New(nil)
		t, err := cat.Define(args[0], defineIcon, defineProps)
		if err != nil {
			return err
		}
		if err := catalog.WriteType(dir, t); err != nil {
			return err
		}
		ui.Success("Defined %s in %s", ui.Brand.Sprint(t.Name), dir)
		if cfg.Catalog.Dir == "" {
			ui.Warning("Set catalog.dir (or $%s) to %s so the server loads it", config.EnvCatalog, dir)
		}
		return nil
	},
}

func init() {
	catalogDefineCmd.Flags().StringVar(&defineIcon, "icon", "", "icon name")
	catalogDefineCmd.Flags().StringVar(&defineProps, "props", "", "default properties, key=value,key2")
	catalogCmd.AddCommand(catalogListCmd, catalogDefineCmd)
	rootCmd.AddCommand(catalogCmd)
}
