package main

import (
	"context"
	"fmt"
	"net"

	"github.com/danmuck/rgbclient/internal/client"
	"github.com/danmuck/rgbclient/internal/config"
	"github.com/danmuck/rgbclient/internal/display"
	"github.com/danmuck/rgbclient/internal/logging"
	"github.com/danmuck/rgbclient/internal/observability"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "rgbclient [server]",
		Short: "Render a streamed RGB bitmap onto a local display",
		Long: `rgbclient connects to a frame server, reads one preamble describing the
bitmap, then renders every frame that follows into the destination
rectangle of the display.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				logging.SetLevel(zerolog.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd.Flags(), args)
			if err != nil {
				return err
			}
			return runClient(cmd.Context(), cfg)
		},
	}
	opts.bind(root.Flags())
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(newInitCmd())
	return root
}

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "rgbclient.toml"
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.WriteTemplate(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// runClient owns the display for the process lifetime and supervises the
// session and the optional HTTP surface.
func runClient(ctx context.Context, cfg config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dopts, err := cfg.DisplayOptions(cancel)
	if err != nil {
		return err
	}
	sink, err := display.Open(dopts)
	if err != nil {
		return fmt.Errorf("open display: %w", err)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			log.Warn().Err(err).Msg("rgbclient display close failed")
		}
	}()

	status := observability.NewStatus(cfg.Address())
	session, err := client.NewSession(cfg.ClientConfig(), sink, client.WithStatus(status))
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.MetricsAddr != "" {
		ln, err := net.Listen("tcp", cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("listen metrics: %w", err)
		}
		g.Go(func() error {
			return observability.Serve(gctx, ln, status, cfg.CorsOrigins)
		})
	}
	g.Go(func() error {
		defer cancel()
		return session.Run(gctx)
	})

	log.Info().
		Str("server", cfg.Address()).
		Str("display", string(dopts.Kind)).
		Bool("reconnect", cfg.Reconnect).
		Int("retry_count", cfg.RetryCount).
		Msg("rgbclient started")
	err = g.Wait()
	log.Info().Err(err).Msg("rgbclient stopped")
	return err
}
