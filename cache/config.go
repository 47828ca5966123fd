package cache

import (
	"time"

	"github.com/goliatone/go-hostel-admin/internal/cacheinfra"
)

// Config sizes the store that backs in-flight de-duplication. Freshness is
// decided by the query layer, so early refresh is not exposed here.
type Config struct {
	Capacity           int           `koanf:"capacity" validate:"gt=0"`
	NumShards          int           `koanf:"num_shards" validate:"gt=0"`
	TTL                time.Duration `koanf:"ttl" validate:"gt=0"`
	EvictionPercentage int           `koanf:"eviction_percentage" validate:"min=1,max=100"`
	EvictionInterval   time.Duration `koanf:"eviction_interval" validate:"gte=0"`
}

// DefaultConfig returns the store defaults.
func DefaultConfig() Config {
	d := cacheinfra.DefaultConfig()
	return Config{
		Capacity:           d.Capacity,
		NumShards:          d.NumShards,
		TTL:                d.TTL,
		EvictionPercentage: d.EvictionPercentage,
		EvictionInterval:   d.EvictionInterval,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.infra().Validate()
}

// NewCacheService constructs the sturdyc backed cache service.
func NewCacheService(cfg Config) (CacheService, error) {
	svc, err := cacheinfra.NewSturdycService(cfg.infra())
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (c Config) infra() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
	}
}
