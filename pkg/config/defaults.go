package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "barberbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRateLimitRequests = 20
	DefaultRateLimitBurst    = 5
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultWizardSessionTTL = 30 * time.Minute

	DefaultSlotLockTTL = 10 * time.Second

	// Fallback schedule applied to shops created without one.
	DefaultWeekdayStart    = "09:00"
	DefaultWeekdayEnd      = "19:00"
	DefaultSlotIntervalMin = 30
	DefaultWeekendSlots    = 20

	DefaultPaginationLimit = 100

	DefaultKafkaBookingEventsTopic = "barberbook.booking.events"
)
