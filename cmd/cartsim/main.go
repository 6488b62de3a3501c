package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rl1809/checkout-sim/internal/adapter/catalog"
	"github.com/rl1809/checkout-sim/internal/adapter/handler"
	"github.com/rl1809/checkout-sim/internal/adapter/storage"
	"github.com/rl1809/checkout-sim/internal/config"
	"github.com/rl1809/checkout-sim/internal/core/service"
	"github.com/rl1809/checkout-sim/internal/observability"
	"github.com/rl1809/checkout-sim/internal/port"
)

var (
	cfg    config.Config
	cat    *catalog.Catalog
	logger *observability.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "cartsim",
		Short:        "Run checkout scenarios against the canonical catalog",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return err
			}
			if path, _ := cmd.Flags().GetString("catalog"); path != "" {
				cfg.CatalogPath = path
			}
			if mode, _ := cmd.Flags().GetString("log-mode"); mode != "" {
				cfg.LogMode = mode
			}
			if cat, err = catalog.Open(cfg.CatalogPath); err != nil {
				return err
			}
			logger, err = observability.NewLogger(cfg.LogMode)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Sync()
			}
		},
	}
	root.PersistentFlags().String("catalog", "", "catalog YAML file (default: embedded)")
	root.PersistentFlags().String("log-mode", "", "log mode: development or production")

	root.AddCommand(newRunCmd(), newListCmd(), newSeedCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		asJSON   bool
		parallel bool
	)
	cmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Run named scenarios (all when none given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = service.Scenarios()
			}
			runner := handler.NewRunner(cat, cat, logger, nil)

			reports := make([]service.Report, len(names))
			if parallel {
				var g errgroup.Group
				for i, name := range names {
					g.Go(func() error {
						reports[i] = runner.Run(name)
						return nil
					})
				}
				_ = g.Wait()
			} else {
				for i, name := range names {
					reports[i] = runner.Run(name)
				}
			}

			failed := 0
			for _, r := range reports {
				if !r.Passed {
					failed++
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(reports); err != nil {
					return err
				}
			} else {
				for _, r := range reports {
					status := "PASS"
					if !r.Passed {
						status = "FAIL"
					}
					fmt.Fprintf(out, "%-4s %-18s %8s  %d events", status, r.Scenario, r.Duration.Round(time.Microsecond), len(r.Events))
					if r.Error != "" {
						fmt.Fprintf(out, "  %s", r.Error)
					}
					fmt.Fprintln(out)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, len(reports))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print reports as JSON")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "run scenarios concurrently, each with its own event log")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scenarios and catalog entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Scenarios:")
			for _, name := range service.Scenarios() {
				fmt.Fprintf(out, "  %s\n", name)
			}
			fmt.Fprintln(out, "Products:")
			for _, p := range cat.Products() {
				fmt.Fprintf(out, "  %-18s %8s  stock %d\n", p.SKU, p.Price.StringFixed(2), p.Stock)
			}
			fmt.Fprintln(out, "Coupons:")
			for _, c := range cat.Coupons() {
				fmt.Fprintf(out, "  %-12s %-10s %5s  valid=%t expired=%t\n", c.Code, c.Kind, c.Value.String(), c.Valid, c.Expired)
			}
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var (
		useRedis bool
		useMySQL bool
		reset    bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Mirror the catalog into Redis and/or MySQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			var (
				stock    port.StockSeeder
				products port.ProductSeeder
			)

			if useRedis {
				rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
				defer rdb.Close()
				if err := rdb.Ping(ctx).Err(); err != nil {
					return fmt.Errorf("connect redis: %w", err)
				}
				stock = storage.NewRedisAdapter(rdb)
			}

			if useMySQL {
				db, err := sql.Open("mysql", cfg.MySQLDSN)
				if err != nil {
					return fmt.Errorf("open mysql: %w", err)
				}
				defer db.Close()
				if err := db.PingContext(ctx); err != nil {
					return fmt.Errorf("connect mysql: %w", err)
				}
				adapter := storage.NewMySQLAdapter(db)
				if err := adapter.EnsureSchema(ctx); err != nil {
					return err
				}
				products = adapter
			}

			if stock == nil && products == nil {
				return fmt.Errorf("nothing to seed: pass --redis and/or --mysql")
			}

			seeder := service.NewSeedService(cat, stock, products)
			if reset {
				if err := seeder.Reset(ctx); err != nil {
					return err
				}
				logger.Info("stock reset", "redis", useRedis, "mysql", useMySQL)
				return seeder.Verify(ctx)
			}

			res, err := seeder.Seed(ctx)
			if err != nil {
				return err
			}
			logger.Info("catalog seeded", "products", res.Products, "coupons", res.Coupons, "stock_keys", res.Stock)
			return seeder.Verify(ctx)
		},
	}
	cmd.Flags().BoolVar(&useRedis, "redis", false, "seed stock into Redis (REDIS_ADDR)")
	cmd.Flags().BoolVar(&useMySQL, "mysql", false, "seed products and coupons into MySQL (MYSQL_DSN)")
	cmd.Flags().BoolVar(&reset, "reset", false, "only restore canonical stock")
	return cmd
}
