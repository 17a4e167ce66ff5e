package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/config"
	"github.com/yeremiapane/restaurant-reservation/database"
	"github.com/yeremiapane/restaurant-reservation/events"
	"github.com/yeremiapane/restaurant-reservation/hub"
	"github.com/yeremiapane/restaurant-reservation/middlewares"
	"github.com/yeremiapane/restaurant-reservation/repository"
	"github.com/yeremiapane/restaurant-reservation/router"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}

	utils.InitLogger(cfg.LogLevel)
	utils.SetJWTSecret(cfg.JWTSecret)
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	if cfg.SeedTables {
		n, err := database.SeedTables(context.Background(), db)
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to seed tables: %v", err)
		}
		if n > 0 {
			utils.InfoLogger.Printf("Seeded %d default tables", n)
		}
	}

	realtime := hub.New()
	defer realtime.Close()
	notify := []services.Notifier{realtime}

	if cfg.RabbitURL != "" {
		publisher, err := events.NewPublisher(cfg.RabbitURL)
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
		notify = append(notify, publisher)
		utils.InfoLogger.Printf("Publishing events to exchange %s", events.ExchangeName)
	}

	tableRepo := repository.NewTableRepository(db)
	reservationRepo := repository.NewReservationRepository(db)

	reservationSvc := services.NewReservationService(reservationRepo, tableRepo, services.ReservationOptions{
		StrictTables: cfg.StrictTableCheck,
		Notifiers:    notify,
	})
	tableSvc := services.NewTableService(tableRepo, reservationRepo, notify...)
	reconciler := services.NewReconciler(tableRepo, reservationRepo, notify...)

	// Bring table statuses in line with stored reservations before serving
	if _, err := reconciler.ReconcileFromReservations(context.Background()); err != nil {
		utils.ErrorLogger.Printf("Initial reconcile failed: %v", err)
	}

	monitor := services.NewSyncMonitor(reconciler, cfg.ReconcileInterval)
	monitor.Start()
	defer monitor.Stop()

	r := router.SetupRouter(router.Deps{
		Reservations:  reservationSvc,
		Tables:        tableSvc,
		Reconciler:    reconciler,
		Hub:           realtime,
		ReserveLimit:  middlewares.NewRateLimiter(cfg.ReserveRate, cfg.ReserveBurst),
		CORSOrigin:    cfg.CORSOrigin,
		RequestLogger: true,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.InfoLogger.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Printf("Server forced to shutdown: %v", err)
	}
}
