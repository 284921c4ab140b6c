package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rl1809/potion-bottler/internal/app"
	"github.com/rl1809/potion-bottler/internal/config"
	"github.com/rl1809/potion-bottler/internal/core/domain"
)

type stressOptions struct {
	configPath    string
	initialGreen  int
	workers       int
	totalRequests int
}

func main() {
	opts := &stressOptions{}
	cmd := &cobra.Command{
		Use:   "stress_test",
		Short: "Fire concurrent deliveries and check green is never overdrawn",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "TOML config; defaults to a throwaway SQLite store")
	cmd.Flags().IntVar(&opts.initialGreen, "green", 2000, "green ml to seed")
	cmd.Flags().IntVar(&opts.workers, "workers", 20, "deliveries the stock can satisfy")
	cmd.Flags().IntVar(&opts.totalRequests, "requests", 50, "deliveries to fire")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *stressOptions) error {
	if opts.workers <= 0 || opts.initialGreen%opts.workers != 0 {
		return fmt.Errorf("green (%d) must split evenly across %d workers", opts.initialGreen, opts.workers)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.configPath == "" {
		dir, err := os.MkdirTemp("", "bottler-stress")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)
		cfg.SQLitePath = filepath.Join(dir, "stress.db")
	}

	a, err := app.New(ctx, cfg, zerolog.Nop())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Store().SetLiquidInventory(ctx, domain.LiquidInventory{opts.initialGreen, 0, 0, 0}); err != nil {
		return fmt.Errorf("seed inventory: %w", err)
	}

	perDelivery := opts.initialGreen / opts.workers
	item := []domain.DeliveryItem{{Signature: domain.Signature{perDelivery, 0, 0, 0}, Quantity: 1}}

	var successCount, shortCount, errorCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()
	orderBase := int(start.Unix())

	for i := 0; i < opts.totalRequests; i++ {
		wg.Add(1)
		go func(orderID int) {
			defer wg.Done()

			err := a.Bottler.DeliverPotions(ctx, orderID, item)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				shortCount.Add(1)
			default:
				errorCount.Add(1)
			}
		}(orderBase + i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	short := shortCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Green:    %d ml\n", opts.initialGreen)
	fmt.Printf("Per Delivery:     %d ml\n", perDelivery)
	fmt.Printf("Total Requests:   %d\n", opts.totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Insufficient:     %d\n", short)
	fmt.Printf("Errors:           %d\n", errorCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	expected := int32(min(opts.workers, opts.totalRequests))
	if success == expected {
		fmt.Printf("PASS: Exactly %d deliveries succeeded\n", expected)
	} else {
		fmt.Printf("FAIL: Expected %d successes, got %d\n", expected, success)
	}

	inv, err := a.Store().GetLiquidInventory(ctx)
	if err != nil {
		return fmt.Errorf("read inventory: %w", err)
	}
	fmt.Printf("Final Green:      %d ml\n", inv[domain.Green])

	want := opts.initialGreen - int(expected)*perDelivery
	if inv[domain.Green] == want {
		fmt.Printf("PASS: Green debited by exactly %d ml\n", opts.initialGreen-want)
	} else {
		fmt.Printf("FAIL: Expected green %d, got %d\n", want, inv[domain.Green])
	}
	return nil
}
