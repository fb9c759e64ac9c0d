package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/marcos777-ux/Newsick-public/pkg/authsdk"
	"github.com/marcos777-ux/Newsick-public/pkg/session"
	"github.com/marcos777-ux/Newsick-public/pkg/slogx"
)

// cliConfig is read from the environment first, flags win when set.
type cliConfig struct {
	GatewayURL     string        `env:"NEWSICK_GATEWAY_URL"     envDefault:"http://localhost:8080"`
	RequestTimeout time.Duration `env:"NEWSICK_REQUEST_TIMEOUT" envDefault:"15s"`
	LogLevel       string        `env:"NEWSICK_LOG_LEVEL"       envDefault:"error"`
}

// NewRootCmd creates the root command for the newsick CLI.
func NewRootCmd() *cobra.Command {
	cfg := &cliConfig{}
	var (
		gatewayURL string
		timeout    time.Duration
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "newsick",
		Short: "Newsick account client",
		Long: `newsick signs in to or registers a Newsick account against a gateway
and prints the resulting profile.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := env.Parse(cfg); err != nil {
				return fmt.Errorf("parse env: %w", err)
			}
			if cmd.Flags().Changed("gateway") {
				cfg.GatewayURL = gatewayURL
			}
			if cmd.Flags().Changed("timeout") {
				cfg.RequestTimeout = timeout
			}
			if verbose {
				cfg.LogLevel = "debug"
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&gatewayURL, "gateway", "", "gateway base URL (env NEWSICK_GATEWAY_URL)")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "per request timeout (env NEWSICK_REQUEST_TIMEOUT)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log session transitions to stderr")

	cmd.AddCommand(newLoginCmd(cfg))
	cmd.AddCommand(newRegisterCmd(cfg))
	cmd.AddCommand(newStatusCmd(cfg))

	return cmd
}

func (c *cliConfig) logger(cmd *cobra.Command) *slog.Logger {
	return slogx.NewLogger(slogx.Config{
		Service: "newsick",
		Version: version,
		Level:   c.LogLevel,
		Format:  "text",
		Output:  cmd.ErrOrStderr(),
	})
}

func (c *cliConfig) client() *authsdk.SDKClient {
	return authsdk.NewSDKClient(c.GatewayURL)
}

func (c *cliConfig) controller(cmd *cobra.Command) *session.Controller {
	return session.New(c.client(),
		session.WithLogger(c.logger(cmd)),
		session.WithRequestTimeout(c.RequestTimeout),
	)
}
