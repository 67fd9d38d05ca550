package main

import (
	"github.com/julienschmidt/httprouter"

	bookinghandler "barberbook/internal/bookings/handler"
	bookingrepository "barberbook/internal/bookings/repository"
	bookingservice "barberbook/internal/bookings/service"
	bookingvalidator "barberbook/internal/bookings/validator"
	shophandler "barberbook/internal/shops/handler"
	shoprepository "barberbook/internal/shops/repository"
	shopservice "barberbook/internal/shops/service"
	shopvalidator "barberbook/internal/shops/validator"
	"barberbook/internal/wizard"
	wizardhandler "barberbook/internal/wizard/handler"
	"barberbook/pkg/app"
	"barberbook/pkg/config"
	"barberbook/pkg/contracts"
	"barberbook/pkg/kafka"
)

const ServiceName = "barberbook"

// apiHandler composes the domain handlers onto a single router.
type apiHandler struct {
	handlers []contracts.Handler
}

func (h *apiHandler) RegisterRoutes(router *httprouter.Router) {
	for _, handler := range h.handlers {
		handler.RegisterRoutes(router)
	}
}

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting barberbook service")

	events := initEventProducer(cfg)

	bookingRepo := bookingrepository.NewMongoBookingRepository(cfg)
	lockRepo := bookingrepository.NewSlotLockRepository(cfg)
	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		lockRepo,
		bookingvalidator.NewBookingValidator(cfg.Log),
		events,
		cfg,
	)

	shopRepo := shoprepository.NewMongoShopRepository(cfg)
	shopService := shopservice.NewShopService(
		shopRepo,
		bookingRepo,
		shopvalidator.NewShopValidator(cfg.Log),
		cfg,
	)

	sessionStore := wizard.NewSessionStore(cfg.WizardSessionTTL, cfg.Log)

	api := &apiHandler{handlers: []contracts.Handler{
		shophandler.NewShopHandler(shopService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		wizardhandler.NewWizardHandler(shopService, bookingRepo, bookingService, sessionStore, cfg.Log),
	}}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(api)
	serverApp.OnShutdown(sessionStore.Stop)
	if events != nil {
		serverApp.OnShutdown(func() {
			if err := events.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		})
	}
	serverApp.Run()
}

// initEventProducer returns nil when no brokers are configured; booking
// events are then skipped entirely.
func initEventProducer(cfg *config.Config) *kafka.Producer {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("Kafka brokers not configured, booking events disabled")
		return nil
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaBookingEventsTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka producer", "error", err)
	}

	cfg.Log.Info("Kafka producer initialized",
		"brokers", cfg.KafkaBrokers,
		"topic", cfg.KafkaBookingEventsTopic,
	)
	return producer
}
