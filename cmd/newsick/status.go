package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(cfg *cliConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that the gateway is up and ready",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := cfg.client()

			live, err := client.GetLiveness(cmd.Context())
			if err != nil {
				return fmt.Errorf("gateway %s is not reachable: %w", cfg.GatewayURL, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "live:  %s (version %s, up %s)\n", live.Status, live.Version, live.Uptime)

			ready, err := client.GetReadiness(cmd.Context())
			if err != nil {
				return fmt.Errorf("gateway %s is not ready: %w", cfg.GatewayURL, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ready: %s\n", ready.Status)
			return nil
		},
	}
}
