package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpapi "ride-enrichment/internal/api/http"
	"ride-enrichment/internal/config"
	"ride-enrichment/internal/pipeline"
	"ride-enrichment/internal/scheduler"
	"ride-enrichment/internal/store"
)

func main() {
	root := &cobra.Command{
		Use:   "ride-enrichment",
		Short: "Silver-to-gold enrichment pipeline for ride bookings",
		Long: "Enriches silver ride-booking records with geocoded pickup/drop " +
			"coordinates and nearest-in-time historical weather, producing the " +
			"gold dataset.",
		SilenceUsage: true,
	}

	root.AddCommand(runCmd(), serveCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// runCmd executes one batch pass and exits.
func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one silver-to-gold enrichment pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			p, err := pipeline.New(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summary, err := p.Run(ctx)
			if err != nil {
				return err
			}

			log.Printf("run complete: %d rides, %d/%d locations resolved, %d weather rows, %d gold rows in %s",
				summary.RideCount, summary.ResolvedLocations, summary.UniqueLocations,
				summary.WeatherRows, summary.GoldRows,
				summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))
			return nil
		},
	}
}

// serveCmd runs the pipeline on a schedule and exposes the run history API.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the pipeline on a schedule with an operational HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			p, err := pipeline.New(cfg)
			if err != nil {
				return err
			}

			// Run history with configured retention.
			runs := store.NewMemoryStore(cfg.RunsMaxHistory, cfg.RunsMaxAge)

			sched := scheduler.New(p, runs, cfg.FetchInterval)
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			app := fiber.New(fiber.Config{
				AppName:               "ride-enrichment",
				DisableStartupMessage: true,
				ReadTimeout:           10 * time.Second,
				WriteTimeout:          10 * time.Second,
				ErrorHandler: func(c *fiber.Ctx, err error) error {
					// Centralized error response
					code := fiber.StatusInternalServerError
					if e, ok := err.(*fiber.Error); ok {
						code = e.Code
					}
					return c.Status(code).JSON(fiber.Map{
						"error":   true,
						"message": err.Error(),
					})
				},
			})

			app.Use(logger.New())
			app.Use(recover.New())

			app.Get("/health", func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{
					"status":  "ok",
					"service": "ride-enrichment",
				})
			})

			httpapi.RegisterRoutes(app, runs)

			go func() {
				if err := app.Listen(":" + cfg.Port); err != nil {
					log.Printf("fiber server stopped: %v", err)
				}
			}()

			// Wait for termination signal
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				log.Printf("error during shutdown: %v", err)
			}
			return nil
		},
	}
}
