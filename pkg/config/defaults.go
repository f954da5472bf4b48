package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "clinic"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultStorageBackend = StorageMongo
	DefaultSlotCapacity   = 4
	DefaultClinicTimeZone = "Asia/Manila"
	DefaultSlotLockTTL    = 10 * time.Second

	DefaultKafkaEnabled              = false
	DefaultAppointmentEventsTopic    = "clinic.appointments.events"
	DefaultAppointmentEventsDLQTopic = "clinic.appointments.events.dlq"

	DefaultPaginationLimit = 100
	MinPaginationLimit     = 10
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)
