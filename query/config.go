package query

import (
	"time"

	"github.com/goliatone/go-errors"
)

// Config controls freshness, retries and idle collection of cached reads.
type Config struct {
	// StaleTime is how long a successful read is served without a network call.
	// Zero means every read goes to the network (still de-duplicated).
	StaleTime time.Duration `koanf:"stale_time" validate:"gte=0"`

	// GCTime is how long an entry with no subscribers is kept before it is dropped.
	// Zero keeps idle entries until MaxIdleEntries pushes them out.
	GCTime time.Duration `koanf:"gc_time" validate:"gte=0"`

	// Retry is the number of automatic retries after a failed read.
	Retry int `koanf:"retry" validate:"gte=0,lte=5"`

	// RetryDelay is the pause before each retry.
	RetryDelay time.Duration `koanf:"retry_delay" validate:"gte=0"`

	// MaxIdleEntries bounds how many unobserved entries are retained.
	MaxIdleEntries int `koanf:"max_idle_entries" validate:"gte=0"`
}

// DefaultConfig mirrors the admin console defaults: one retry, no focus refetch.
func DefaultConfig() Config {
	return Config{
		StaleTime:      30 * time.Second,
		GCTime:         5 * time.Minute,
		Retry:          1,
		RetryDelay:     time.Second,
		MaxIdleEntries: 1000,
	}
}

// DefaultShouldRetry skips errors a second attempt cannot fix.
func DefaultShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	for _, category := range []errors.Category{
		errors.CategoryValidation,
		errors.CategoryBadInput,
		errors.CategoryAuth,
		errors.CategoryAuthz,
		errors.CategoryNotFound,
	} {
		if errors.HasCategory(err, category) {
			return false
		}
	}
	return true
}
