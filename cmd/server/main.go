package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"ticket-availability/config"
	"ticket-availability/internal/database"
	"ticket-availability/internal/handler"
	"ticket-availability/internal/lock"
	"ticket-availability/internal/queue"
	"ticket-availability/internal/repository"
	"ticket-availability/internal/service"
	"ticket-availability/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// repositories
	eventRepo := repository.NewEventRepository(pool)
	occurrenceRepo := repository.NewOccurrenceRepository(pool)
	ticketTypeRepo := repository.NewTicketTypeRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)

	// infrastructure
	bookingMutex := lock.NewRedisBookingMutex(rdb, cfg.Booking.LockTTL)
	reservationQueue, err := queue.NewRedisStreamReservationQueue(rdb, "", nil)
	if err != nil {
		log.Fatalf("Failed to initialize reservation queue: %v", err)
	}

	// services
	eventService := service.NewEventService(eventRepo)
	occurrenceService := service.NewOccurrenceService(occurrenceRepo, eventRepo)
	ticketTypeService := service.NewTicketTypeService(ticketTypeRepo, eventRepo)
	availabilityService := service.NewAvailabilityService(pool, ticketTypeRepo, occurrenceRepo, reservationRepo)
	bookingService := service.NewBookingService(pool, reservationRepo, ticketTypeRepo, occurrenceRepo, bookingMutex, reservationQueue, cfg.Booking.HoldDuration)

	// hold expiry worker
	holdWorker := worker.NewHoldWorker(bookingService, reservationQueue)
	if err := holdWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start hold worker: %v", err)
	}

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	handler.NewEventHandler(eventService).RegisterRoutes(router)
	handler.NewOccurrenceHandler(occurrenceService).RegisterRoutes(router)
	handler.NewTicketTypeHandler(ticketTypeService).RegisterRoutes(router)
	handler.NewAvailabilityHandler(availabilityService).RegisterRoutes(router)
	handler.NewReservationHandler(bookingService).RegisterRoutes(router)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
