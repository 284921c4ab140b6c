package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rl1809/potion-bottler/internal/adapter/handler"
	"github.com/rl1809/potion-bottler/internal/app"
	"github.com/rl1809/potion-bottler/internal/config"
	"github.com/rl1809/potion-bottler/internal/core/domain"
	"github.com/rl1809/potion-bottler/internal/observability"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "bottler",
		Short:         "Potion shop bottling planner and delivery reconciler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a TOML config file")

	cmd.AddCommand(
		newServeCmd(opts),
		newPlanCmd(opts),
		newSeedCmd(opts),
		newCatalogCmd(opts),
	)
	return cmd
}

func loadApp(ctx context.Context, opts *rootOptions) (*app.App, zerolog.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger := observability.InitLogger("bottler", cfg.LogLevel, cfg.LogPretty)
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, logger, err
	}
	return a, logger, nil
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, _, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(ctx)
		},
	}
}

func newPlanCmd(opts *rootOptions) *cobra.Command {
	var remote string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print a bottle plan for the liquid on hand",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if remote != "" {
				return printRemotePlan(ctx, cmd.OutOrStdout(), remote)
			}

			a, _, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			plan, err := a.Bottler.GetBottlePlan(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), plan)
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "ask a running server at this gRPC address instead of the local store")
	return cmd
}

func printRemotePlan(ctx context.Context, out io.Writer, addr string) error {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := handler.NewBottlerClient(conn).GetBottlePlan(ctx, &handler.GetBottlePlanRequest{})
	if err != nil {
		return fmt.Errorf("get bottle plan: %w", err)
	}
	return printJSON(out, resp.Plan)
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var inv domain.LiquidInventory
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Overwrite the liquid inventory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, logger, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Store().SetLiquidInventory(ctx, inv); err != nil {
				return err
			}
			logger.Info().Ints("inventory", inv[:]).Msg("liquid inventory set")
			return nil
		},
	}
	for _, ch := range domain.Channels {
		cmd.Flags().IntVar(&inv[ch], ch.String(), 0, fmt.Sprintf("%s ml on hand", ch))
	}
	return cmd
}

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List catalog entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, _, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			potions, err := a.Bottler.ListCatalog(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), potions)
		},
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
