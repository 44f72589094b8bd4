package constants

import "time"

// Context keys
const (
	ContextTokenData = "token_data"
	ContextCompanyID = "company_id"
)

// Database settings
const (
	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
)

// HTTP client timeouts, sized by operation weight
const (
	DefaultTimeout      = 10 * time.Second
	CalendarCallTimeout = 30 * time.Second
	EmailSendTimeout    = 60 * time.Second
	HeavyCallTimeout    = 120 * time.Second
)

// Scheduling defaults
const (
	// SlotIncrementMinutes is the candidate-slot grid step
	SlotIncrementMinutes = 15
	DefaultSearchDays    = 7
)

// Cache TTLs
const (
	ContactCacheTTL    = 7 * 24 * time.Hour
	EventCacheTTL      = 15 * time.Minute
	CredentialCacheTTL = 5 * time.Minute
)

// Asynq task type names
const (
	TaskEmailDeliver = "email:deliver"
)
