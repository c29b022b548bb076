package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"floorlink/internal/discovery"
	"floorlink/internal/service"
	"floorlink/internal/ui"
)

var (
	discoverPorts string
	discoverName  string
)

var discoverCmd = &cobra.Command{
	Use:   "discover [TARGET...]",
	Short: "Scan the network with nmap and place every new host",
	Long: `Scan CIDR ranges or addresses (default: discovery.targets from config) and
add one item per live host to the project file, or to a stored project with
--name. Item types are guessed from open ports and hosts already on the plan
(matched by their "ip" property) are skipped. Requires the nmap binary.`,
	Example: `  floorlink discover 192.168.1.0/24 -p office.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		targets := args
		if len(targets) == 0 {
			targets = cfg.Discovery.Targets
		}
		opts := scanOptions(cfg)
		if discoverPorts != "" {
			opts = append(opts, discovery.WithPortRange(discoverPorts))
		}
		scanner, err := discovery.NewScanner(targets, opts...)
		if err != nil {
			return err
		}

		run := withSession
		if discoverName != "" {
			run = withRepository
		}
		return run(cmd.Context(), func(ctx context.Context, s *service.Session) error {
			if discoverName != "" {
				if err := s.LoadProject(ctx, discoverName); err != nil {
					ui.Warning("Starting new project %s: %v", discoverName, err)
				}
			} else if err := openProjectFile(ctx, s, projectFile); err != nil {
				return err
			}

			fmt.Printf("Scanning %v...\n", scanner.Targets())
			placed, err := s.Discover(ctx, scanner)
			if err != nil {
				return err
			}

			var rows [][]string
			for _, item := range placed {
				ip, _ := item.Properties.Get("ip")
				rows = append(rows, []string{item.ID, item.Label, ip})
			}
			ui.Table([]string{"ID", "LABEL", "IP"}, rows)

			if discoverName != "" {
				err = s.SaveProject(ctx, discoverName)
			} else {
				err = saveProjectFile(ctx, s, projectFile)
			}
			if err != nil {
				return err
			}
			ui.Success("Added %d hosts", len(placed))
			return nil
		})
	},
}

func init() {
	discoverCmd.Flags().StringVarP(&projectFile, "project", "p", defaultProjectFile, "project file")
	discoverCmd.Flags().StringVar(&discoverName, "name", "", "stored project to update instead of a file")
	discoverCmd.Flags().StringVar(&discoverPorts, "ports", "", "ports to scan (overrides config)")
	rootCmd.AddCommand(discoverCmd)
}
