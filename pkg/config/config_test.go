package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		MongoURI:          DefaultMongoURI,
		MongoDatabaseName: DefaultMongoDatabaseName,
		MongoConnTimeout:  DefaultMongoConnTimeout,
		Port:              DefaultPort,
		RequestTimeout:    DefaultRequestTimeout,
		IdempotencyTTL:    DefaultIdempotencyTTL,
		MaxRequestSize:    DefaultMaxRequestSize,
		ReadTimeout:       DefaultReadTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		ShutdownTimeout:   DefaultShutdownTimeout,
		StorageBackend:    StorageMongo,
		SlotCapacity:      DefaultSlotCapacity,
		ClinicTimeZone:    "UTC",
		SlotLockTTL:       DefaultSlotLockTTL,
	}
}

func TestValidate_ResolvesLocation(t *testing.T) {
	cfg := validConfig()

	require.NoError(t, cfg.Validate())
	require.NotNil(t, cfg.Location)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "0"
	cfg.SlotCapacity = 0
	cfg.ClinicTimeZone = "Mars/Olympus_Mons"
	cfg.MongoURI = "postgres://nope"

	err := cfg.Validate()

	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "Port must be between 1 and 65535")
	assert.Contains(t, msg, "SlotCapacity must be positive")
	assert.Contains(t, msg, "ClinicTimeZone must be a valid IANA zone")
	assert.Contains(t, msg, "MongoURI must start with")
}

func TestValidate_MemoryBackendSkipsMongoChecks(t *testing.T) {
	cfg := validConfig()
	cfg.StorageBackend = StorageMemory
	cfg.MongoURI = ""

	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.UsesMongo())
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.StorageBackend = "sqlite"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "StorageBackend must be one of"))
}

func TestRedactMongoURI(t *testing.T) {
	got := redactMongoURI("mongodb://admin:secret@db:27017")
	assert.Equal(t, "mongodb://***:***@db:27017", got)
}

func TestNormalizePagination(t *testing.T) {
	assert.Equal(t, MinPaginationLimit, NormalizePaginationLimit(0))
	assert.Equal(t, 25, NormalizePaginationLimit(25))
	assert.Equal(t, DefaultPaginationLimit, NormalizePaginationLimit(10_000))
	assert.Equal(t, int64(0), NormalizeOffset(-5))
	assert.Equal(t, int64(7), NormalizeOffset(7))
}
