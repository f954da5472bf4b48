package main

import (
	"clinic/internal/appointments/events"
	"clinic/internal/appointments/handler"
	"clinic/internal/appointments/metrics"
	"clinic/internal/appointments/repository"
	"clinic/internal/appointments/service"
	"clinic/internal/appointments/validator"
	"clinic/pkg/app"
	"clinic/pkg/config"
	"clinic/pkg/kafka"
	kafka_config "clinic/pkg/kafka/config"
	kafka_middleware "clinic/pkg/kafka/middleware"

	"github.com/prometheus/client_golang/prometheus"
)

const ServiceName = "appointments"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Appointments service")

	serverApp := app.NewApplication()

	repo, locks := initStorage(cfg, serverApp)
	publisher := initPublisher(cfg, serverApp)

	appointmentService := service.NewAppointmentService(
		repo,
		locks,
		validator.NewAppointmentValidator(cfg.Log),
		publisher,
		metrics.New(prometheus.DefaultRegisterer),
		cfg,
	)
	cfg.Log.Info("Appointment service initialized",
		"storage_backend", cfg.StorageBackend,
		"slot_capacity", cfg.SlotCapacity,
	)

	serverApp.SetApp(cfg, repo, handler.NewAppointmentHandler(appointmentService, cfg.Log))
	serverApp.Run()
}

func initStorage(cfg *config.Config, serverApp *app.Application) (repository.AppointmentRepository, repository.SlotLockRepository) {
	if !cfg.UsesMongo() {
		cfg.Log.Warn("Using in-memory storage, appointments are lost on restart")
		return repository.NewMemoryAppointmentRepository(cfg.SlotCapacity, cfg.Location),
			repository.NewMemorySlotLockRepository()
	}

	cfg.SetMongo()
	serverApp.OnShutdown(cfg.GracefulShutdown)
	cfg.Log.Info("Mongo storage initialized", "database", cfg.MongoDatabaseName)
	return repository.NewMongoAppointmentRepository(cfg), repository.NewMongoSlotLockRepository(cfg)
}

func initPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, appointment events are not published")
		return events.NoopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, cfg.AppointmentEventsTopic, cfg.AppointmentEventsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware(kafka_middleware.NewMetrics(prometheus.DefaultRegisterer)))
	}
	serverApp.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	return events.NewKafkaPublisher(producer, ServiceName)
}
