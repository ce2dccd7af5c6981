package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	catalogAdapter "github.com/stellardrift/stellardrift-go/internal/adapters/catalog"
	"github.com/stellardrift/stellardrift-go/internal/adapters/combat"
	"github.com/stellardrift/stellardrift-go/internal/adapters/metrics"
	"github.com/stellardrift/stellardrift-go/internal/adapters/persistence"
	capitalshipApp "github.com/stellardrift/stellardrift-go/internal/application/capitalship"
	"github.com/stellardrift/stellardrift-go/internal/application/common"
	"github.com/stellardrift/stellardrift-go/internal/application/economy"
	fleetApp "github.com/stellardrift/stellardrift-go/internal/application/fleet"
	schedulerApp "github.com/stellardrift/stellardrift-go/internal/application/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
	"github.com/stellardrift/stellardrift-go/internal/infrastructure/config"
	"github.com/stellardrift/stellardrift-go/internal/infrastructure/database"
	"github.com/stellardrift/stellardrift-go/internal/infrastructure/logging"
)

func main() {
	var configPath string
	var balancePath string

	root := &cobra.Command{
		Use:   "stellardrift-daemon",
		Short: "Runs the StellarDrift economy engine and task dispatcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			return run(cfg, balancePath)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to config.yaml (defaults to search paths)")
	root.Flags().StringVar(&balancePath, "balance", "", "path to balance tables (defaults to embedded)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, balancePath string) error {
	logger := logging.NewConsoleLogger(cfg.Logging.Level)
	clock := shared.NewRealClock()

	fmt.Printf("Connecting to %s database...\n", cfg.Database.Type)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	fmt.Println("Database connected")

	cat, err := catalogAdapter.LoadCatalog(balancePath)
	if err != nil {
		return fmt.Errorf("failed to load balance tables: %w", err)
	}
	fmt.Println("Balance tables loaded")

	// Repositories
	planetRepo := persistence.NewGormPlanetRepository(db)
	userRepo := persistence.NewGormUserRepository(db)
	notificationRepo := persistence.NewGormNotificationRepository(db)
	fleetRepo := persistence.NewGormFleetRepository(db)
	reportRepo := persistence.NewGormBattleReportRepository(db)
	shipRepo := persistence.NewGormCapitalShipRepository(db)
	taskRepo := persistence.NewGormTaskRepository(db)

	// Core services
	rates := economy.NewRateCalculator(cat, cfg.Game)
	queues := economy.NewQueueReconciler(cat)
	syncService := economy.NewSyncService(planetRepo, userRepo, rates, queues, cat, clock)
	schedService := schedulerApp.NewService(taskRepo, clock)
	resolver := combat.NewLocalResolver(fleetRepo, planetRepo, cat)

	// Player-facing command handlers behind the mediator
	m := common.NewMediator()
	registrations := []struct {
		register func() error
	}{
		{func() error {
			h := economy.NewSyncPlanetHandler(syncService)
			return common.RegisterHandler[*economy.SyncPlanetCommand](m, h)
		}},
		{func() error {
			h := economy.NewConstructionHandler(syncService, planetRepo, cat, clock)
			if err := common.RegisterHandler[*economy.StartConstructionCommand](m, h); err != nil {
				return err
			}
			if err := common.RegisterHandler[*economy.UpgradeBuildingCommand](m, h); err != nil {
				return err
			}
			return common.RegisterHandler[*economy.DemolishBuildingCommand](m, h)
		}},
		{func() error {
			h := economy.NewEnqueueTrainingHandler(syncService, planetRepo, cat, clock)
			return common.RegisterHandler[*economy.EnqueueTrainingCommand](m, h)
		}},
		{func() error {
			h := fleetApp.NewDispatchFleetHandler(syncService, planetRepo, fleetRepo, shipRepo, schedService, cat, clock)
			return common.RegisterHandler[*fleetApp.DispatchFleetCommand](m, h)
		}},
		{func() error {
			h := capitalshipApp.NewCommissionShipHandler(syncService, shipRepo, cat)
			return common.RegisterHandler[*capitalshipApp.CommissionShipCommand](m, h)
		}},
		{func() error {
			h := capitalshipApp.NewDonateHandler(syncService, planetRepo, userRepo, shipRepo, cat, cfg.Game, clock)
			return common.RegisterHandler[*capitalshipApp.DonateCommand](m, h)
		}},
		{func() error {
			h := capitalshipApp.NewTravelHandler(planetRepo, shipRepo, schedService, cfg.Game, clock)
			if err := common.RegisterHandler[*capitalshipApp.DeployShipCommand](m, h); err != nil {
				return err
			}
			return common.RegisterHandler[*capitalshipApp.RecallShipCommand](m, h)
		}},
		{func() error {
			h := capitalshipApp.NewGarrisonHandler(syncService, planetRepo, shipRepo, cat)
			if err := common.RegisterHandler[*capitalshipApp.LoadGarrisonCommand](m, h); err != nil {
				return err
			}
			return common.RegisterHandler[*capitalshipApp.UnloadGarrisonCommand](m, h)
		}},
		{func() error {
			h := capitalshipApp.NewRepairHandler(syncService, planetRepo, userRepo, shipRepo, cat, cfg.Game, clock)
			if err := common.RegisterHandler[*capitalshipApp.StartRepairCommand](m, h); err != nil {
				return err
			}
			if err := common.RegisterHandler[*capitalshipApp.SalvageShipCommand](m, h); err != nil {
				return err
			}
			return common.RegisterHandler[*capitalshipApp.HealShipCommand](m, h)
		}},
		{func() error {
			h := capitalshipApp.NewDamageHandler(shipRepo, notificationRepo, cfg.Game, clock)
			return common.RegisterHandler[*capitalshipApp.ApplyCombatDamageCommand](m, h)
		}},
	}
	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register command handler: %w", err)
		}
	}
	fmt.Println("Command handlers registered")

	// Metrics exposition
	var dispatcherMetrics schedulerApp.Metrics = schedulerApp.NopMetrics{}
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		dispatcherMetrics = metrics.NewDispatcherMetrics(registry)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
				logger.Log("error", "metrics server stopped", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}()
		fmt.Printf("Metrics exposed on %s\n", cfg.Metrics.Address)
	}

	// Scheduled-task handlers
	dispatcher := schedulerApp.NewDispatcher(taskRepo, clock, cfg.Worker, logger, dispatcherMetrics)

	arrival := fleetApp.NewArrivalHandler(syncService, planetRepo, fleetRepo, shipRepo, reportRepo,
		notificationRepo, resolver, schedService, cat, cfg.Game, clock)
	fleetReturn := fleetApp.NewReturnHandler(syncService, planetRepo, fleetRepo, clock)
	respawn := fleetApp.NewNPCRespawnHandler(syncService, planetRepo, rates, clock)
	shipTasks := capitalshipApp.NewTaskHandlers(shipRepo, notificationRepo, schedService, cfg.Game, clock)
	probe := schedulerApp.NewProbeHandler(schedService,
		time.Duration(cfg.Game.ProbeIntervalMinutes)*time.Minute, clock)

	dispatcher.Register(scheduler.KindFleetArrival, arrival)
	dispatcher.Register(scheduler.KindFleetReturn, fleetReturn)
	dispatcher.Register(scheduler.KindNPCRespawn, respawn)
	dispatcher.Register(scheduler.KindProbeUpdate, probe)
	dispatcher.RegisterFunc(scheduler.KindCapitalShipArrival, shipTasks.HandleArrival)
	dispatcher.RegisterFunc(scheduler.KindCapitalShipReturn, shipTasks.HandleReturn)
	dispatcher.RegisterFunc(scheduler.KindCommitmentEnd, shipTasks.HandleCommitmentEnd)
	fmt.Println("Task handlers registered")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = common.WithLogger(ctx, logger)

	if err := dispatcher.Recover(ctx); err != nil {
		return err
	}
	probeInterval := time.Duration(cfg.Game.ProbeIntervalMinutes) * time.Minute
	if _, err := schedService.EnsurePending(ctx, scheduler.KindProbeUpdate,
		scheduler.ProbeUpdatePayload{}, clock.Now().Add(probeInterval)); err != nil {
		return fmt.Errorf("failed to seed probe tick: %w", err)
	}
	fmt.Println("Dispatcher running, press Ctrl+C to stop")
	return dispatcher.Run(ctx)
}
