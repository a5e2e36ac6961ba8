// cineshelf-mock - in-memory catalog API for local development.
//
// Serves the same routes as the real backend under /api, seeded with a demo
// catalog plus an admin and a viewer account:
//
//	go run ./cmd/cineshelf-mock --addr 127.0.0.1:5000 --latency 300ms
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cineshelf/cineshelf/internal/constants"
	"github.com/cineshelf/cineshelf/internal/logging"
	"github.com/cineshelf/cineshelf/internal/mockserver"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr     string
		rps      float64
		burst    int
		latency  time.Duration
		secret   string
		tokenTTL time.Duration
		empty    bool
		debug    bool
	)

	cmd := &cobra.Command{
		Use:           "cineshelf-mock",
		Short:         "Run an in-memory movie catalog API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewDefaultCLILogger()
			if debug {
				logging.SetGlobalLevel(logging.ParseLevel("debug"))
			}

			store := mockserver.NewStore()
			if !empty {
				if err := mockserver.Seed(store); err != nil {
					return err
				}
			}

			srv := mockserver.New(store, mockserver.Options{
				Secret:            []byte(secret),
				TokenTTL:          tokenTTL,
				RequestsPerSecond: rps,
				Burst:             burst,
				Latency:           latency,
				Logger:            logger,
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info().
				Str("addr", addr).
				Int("movies", store.Len()).
				Str("admin", mockserver.SeedAdminEmail).
				Msg("Mock catalog API listening")

			err := srv.Start(ctx, addr)
			if errors.Is(err, context.Canceled) {
				logger.Info().Msg("Shut down")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", constants.MockListenAddr, "Listen address")
	cmd.Flags().Float64Var(&rps, "rps", 0, "Per-client requests per second (0 disables limiting)")
	cmd.Flags().IntVar(&burst, "burst", 10, "Per-client burst size")
	cmd.Flags().DurationVar(&latency, "latency", 0, "Artificial delay added to every API response")
	cmd.Flags().StringVar(&secret, "secret", "", "HS256 signing secret (random when empty)")
	cmd.Flags().DurationVar(&tokenTTL, "token-ttl", constants.MockTokenTTL, "Lifetime of issued tokens")
	cmd.Flags().BoolVar(&empty, "empty", false, "Start with no movies or accounts")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return cmd
}
