package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvStorageBackend = "STORAGE_BACKEND"
	EnvSlotCapacity   = "SLOT_CAPACITY"
	EnvClinicTimeZone = "CLINIC_TIME_ZONE"
	EnvSlotLockTTL    = "SLOT_LOCK_TTL"

	EnvKafkaEnabled              = "KAFKA_ENABLED"
	EnvAppointmentEventsTopic    = "APPOINTMENT_EVENTS_TOPIC"
	EnvAppointmentEventsDLQTopic = "APPOINTMENT_EVENTS_DLQ_TOPIC"
)
