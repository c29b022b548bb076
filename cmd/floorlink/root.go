package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"floorlink/internal/config"
	"floorlink/internal/ui"
)

var (
	configPath string
	envFiles   []string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "floorlink",
	Short: "Floor plan network mapper",
	Long: `floorlink overlays network equipment on a floor plan image and derives
a connection diagram from each item's "uplink" property. Run "floorlink serve"
for the interactive editor, or use the other commands on project files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.Bad.Sprint("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: search $FLOORLINK_CONFIG, ./floorlink.yaml, ~/.config/floorlink)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", nil, "env files to load before reading config (default .env)")
}

func loadConfig() error {
	if err := config.LoadEnv(envFiles...); err != nil {
		return err
	}

	var (
		path string
		err  error
	)
	if configPath != "" {
		cfg, path, err = config.LoadFromPath(configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return err
	}
	if path != "" {
		log.Printf("Config loaded from %s", path)
	}
	return nil
}
