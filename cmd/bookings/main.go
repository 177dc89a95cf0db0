package main

import (
	"context"
	"time"

	"paws/internal/availability"
	"paws/internal/bookings/handler"
	"paws/internal/bookings/repository"
	"paws/internal/bookings/service"
	"paws/internal/bookings/validator"
	"paws/internal/calendar"
	"paws/internal/notifier"
	"paws/pkg/app"
	"paws/pkg/config"
	"paws/pkg/kafka"
	kafka_config "paws/pkg/kafka/config"
	kafka_middleware "paws/pkg/kafka/middleware"

	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	if err := cfg.ValidateCalendar(); err != nil {
		cfg.Log.Fatal("Invalid calendar configuration", "error", err)
	}

	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")
	bookingNotifier, closeNotifier := initNotifier(cfg)
	bookingService := initServices(cfg, bookingNotifier)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, cfg.BlackoutDefaultMonths, cfg.Log),
		map[string]handler.ReadinessCheck{
			"mongo": func(ctx context.Context) error {
				return cfg.Client.Mongo.Ping(ctx, readpref.Primary())
			},
		},
	)
	serverApp.OnShutdown(closeNotifier)
	serverApp.OnShutdown(cfg.Client.GracefulShutdown)
	serverApp.Run()
}

func initServices(cfg *config.Config, bookingNotifier service.Notifier) service.BookingService {
	gateway, err := calendar.NewGoogleGateway(context.Background(), calendar.Credentials{
		CalendarID:          cfg.GoogleCalendarID,
		ServiceAccountEmail: cfg.GoogleServiceAccountEmail,
		PrivateKey:          cfg.GooglePrivateKey,
	}, cfg.Location, cfg.Log.Component("calendar"))
	if err != nil {
		cfg.Log.Fatal("Failed to create calendar gateway", "error", err)
	}

	engine := availability.NewEngine(gateway, cfg.Location, cfg.CalendarTimeout, cfg.BlackoutMaxMonths, cfg.Log.Component("availability"))
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	vipRepo := repository.NewMongoVIPRepository(cfg, bookingRepo)

	bookingService := service.NewBookingService(
		bookingRepo,
		vipRepo,
		engine,
		bookingNotifier,
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Booking service initialized",
		"database", cfg.MongoDatabaseName,
		"facility_timezone", cfg.Location.String(),
	)
	return bookingService
}

// initNotifier publishes booking events to Kafka when it is enabled and only
// logs them otherwise. The returned func flushes and closes the producer.
func initNotifier(cfg *config.Config) (service.Notifier, func()) {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	if !kafkaCfg.Enabled {
		cfg.Log.Warn("Kafka disabled, booking events will only be logged")
		return notifier.NewLogNotifier(cfg.Log), func() {}
	}

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.BookingTopic, kafkaCfg.BookingDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(metrics.ProducerMiddleware())

	closeProducer := func() {
		metrics.Log(cfg.Log)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		}()
		select {
		case <-done:
		case <-time.After(cfg.ShutdownTimeout):
			cfg.Log.Warn("Timed out closing Kafka producer")
		}
	}
	return notifier.NewEventNotifier(producer, cfg.Log), closeProducer
}
