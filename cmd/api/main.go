package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"travelcrm/internal/config"
	croncfg "travelcrm/internal/cron"
	"travelcrm/internal/database"
	"travelcrm/internal/domain"
	"travelcrm/internal/events"
	"travelcrm/internal/middleware"
	"travelcrm/internal/modules/audit"
	"travelcrm/internal/modules/booking"
	"travelcrm/internal/modules/conversion"
	"travelcrm/internal/modules/customer"
	"travelcrm/internal/modules/followup"
	"travelcrm/internal/modules/inventory"
	"travelcrm/internal/modules/lead"
	"travelcrm/internal/pkg/logger"
	"travelcrm/internal/repository"
	"travelcrm/internal/synccache"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Log.Level)
	mainLog := logger.For("main")

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	leadRepo := repository.NewLeadRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	followUpRepo := repository.NewFollowUpRepository(db)

	cacheLog := logger.For("synccache")
	leads := synccache.New("leads", leadRepo, domain.Lead.Apply, cacheLog)
	customers := synccache.New("customers", customerRepo, domain.Customer.Apply, cacheLog)
	bookings := synccache.New("bookings", bookingRepo, domain.Booking.Apply, cacheLog)

	hub := events.NewHub()
	leads.Subscribe(func(ev synccache.Event) { hub.Broadcast(ev) })
	customers.Subscribe(func(ev synccache.Event) { hub.Broadcast(ev) })
	bookings.Subscribe(func(ev synccache.Event) { hub.Broadcast(ev) })

	inventoryService := inventory.NewService(inventoryRepo, auditRepo, logger.For("inventory"))
	leadService := lead.NewService(leads, leadRepo, logger.For("lead"))
	conversionService := conversion.NewService(
		leads,
		customers,
		bookings,
		inventoryService,
		auditRepo,
		leadRepo,
		logger.For("conversion"),
	)
	followUpService := followup.NewService(followUpRepo, leadRepo)
	bookingService := booking.NewService(bookingRepo, inventoryService, auditRepo, logger.For("booking"))
	customerService := customer.NewService(customers, customerRepo, bookingRepo, logger.For("customer"))

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.RequestLogger(logger.For("http")))
	r.Use(middleware.CORS(cfg.Server.CorsAllowedOrigins))
	r.Use(middleware.Metrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	wsHandler := events.NewWSHandler(hub, logger.For("events"))
	r.GET("/ws/events", wsHandler.HandleWebSocket)

	v1 := r.Group("/api/v1")
	{
		lead.NewHandler(leadService).RegisterRoutes(v1)
		conversion.NewHandler(conversionService).RegisterRoutes(v1)
		followup.NewHandler(followUpService).RegisterRoutes(v1)
		booking.NewHandler(bookingService).RegisterRoutes(v1)
		customer.NewHandler(customerService).RegisterRoutes(v1)
		inventory.NewHandler(inventoryService).RegisterRoutes(v1)
		audit.NewHandler(auditRepo).RegisterRoutes(v1)
	}

	if cfg.Agenda.Enabled {
		agendaJob := croncfg.NewAgendaJob(followUpService, logger.For("agenda"))
		if err := agendaJob.Start(cfg.Agenda.Spec); err != nil {
			log.Fatalf("failed to schedule agenda job: %v", err)
		}
		defer agendaJob.Stop()
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		mainLog.Info().Msg("shutting down")
		hub.Close()
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	mainLog.Info().Str("addr", addr).Msg("starting api server")
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
