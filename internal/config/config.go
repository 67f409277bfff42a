// Package config loads and validates the worker/mixer configuration
// document using a viper-based loader.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mfkiwl/geo-backtracer/internal/btstatus"
)

const envPrefix = "BT"

const (
	defaultWorkerTimeout   = 60 * time.Second
	defaultRetentionHours  = 14 * 24
	defaultGCIntervalHours = 1
	// DefaultShardArea is the sentinel area name marking a shard as the
	// catch-all for points no area partition claims.
	DefaultShardArea = "default"
)

// Shard names one routable destination: a shard name plus the worker
// addresses backing it.
type Shard struct {
	Name      string   `mapstructure:"name"`
	Addresses []string `mapstructure:"addresses"`
}

// Partition is a rectangular spatio-temporal region assigned to a shard.
type Partition struct {
	Shard          string  `mapstructure:"shard"`
	Area           string  `mapstructure:"area"`
	TSBegin        int64   `mapstructure:"ts_begin"`
	TSEnd          int64   `mapstructure:"ts_end"`
	LongitudeBegin float32 `mapstructure:"long_begin"`
	LongitudeEnd   float32 `mapstructure:"long_end"`
	LatitudeBegin  float32 `mapstructure:"lat_begin"`
	LatitudeEnd    float32 `mapstructure:"lat_end"`
}

// IsDefault reports whether p is the catch-all partition for its shard.
func (p Partition) IsDefault() bool {
	return p.Area == DefaultShardArea
}

// Contains reports whether (ts, longitude, latitude) falls inside p's
// half-open rectangle. This is the explicit containment test that
// replaces the reference implementation's ordered-map-of-partitions
// scheme (see DESIGN.md for why that scheme is not reproduced).
func (p Partition) Contains(ts int64, longitude, latitude float32) bool {
	return ts >= p.TSBegin && ts < p.TSEnd &&
		longitude >= p.LongitudeBegin && longitude < p.LongitudeEnd &&
		latitude >= p.LatitudeBegin && latitude < p.LatitudeEnd
}

// Config is the full configuration document shared by workers and the
// mixer. A worker uses ListenAddress, RetentionHorizon, GCInterval and
// MatchMinutes (its data directory comes from its own CLI flag, not this
// document); the mixer uses ListenAddress, Shards, Partitions,
// WorkerCallTimeout and MatchMinutes. Both are validated against the
// shard and partition rules below.
type Config struct {
	ListenAddress      string        `mapstructure:"listen_address"`
	Shards             []Shard       `mapstructure:"shards"`
	Partitions         []Partition   `mapstructure:"partitions"`
	WorkerCallTimeout  time.Duration `mapstructure:"worker_call_timeout"`
	RetentionHorizon   time.Duration `mapstructure:"retention_horizon"`
	GCInterval         time.Duration `mapstructure:"gc_interval"`
	MatchMinutes       int           `mapstructure:"match_minutes"`
}

// NewViper returns a viper instance with defaults and BT_-prefixed env
// bindings configured, following the same shape as the sibling example's
// config loader.
func NewViper() *viper.Viper {
	v := viper.New()
	ApplyDefaults(v)
	return v
}

// ApplyDefaults sets env binding and default values on v.
func ApplyDefaults(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_address", ":7777")
	v.SetDefault("worker_call_timeout", defaultWorkerTimeout)
	v.SetDefault("retention_horizon", time.Duration(defaultRetentionHours)*time.Hour)
	v.SetDefault("gc_interval", time.Duration(defaultGCIntervalHours)*time.Hour)
	v.SetDefault("match_minutes", 30)
}

// Load reads and validates a Config from v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, btstatus.Wrap(btstatus.InvalidConfig, err, "unmarshal config document")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations with more than one default shard, no
// shards at all, a partition referencing an unknown shard, or a shard
// with no worker addresses.
func (c Config) Validate() error {
	if len(c.Shards) == 0 {
		return btstatus.New(btstatus.InvalidConfig, "config must declare at least one shard")
	}

	shardNames := make(map[string]struct{}, len(c.Shards))
	for _, s := range c.Shards {
		if strings.TrimSpace(s.Name) == "" {
			return btstatus.New(btstatus.InvalidConfig, "shard name must not be empty")
		}
		if len(s.Addresses) == 0 {
			return btstatus.New(btstatus.InvalidConfig, "shard %q has no worker addresses", s.Name)
		}
		if _, dup := shardNames[s.Name]; dup {
			return btstatus.New(btstatus.InvalidConfig, "duplicate shard name %q", s.Name)
		}
		shardNames[s.Name] = struct{}{}
	}

	defaultShards := make(map[string]struct{})
	for _, p := range c.Partitions {
		if _, ok := shardNames[p.Shard]; !ok {
			return btstatus.New(btstatus.InvalidConfig, "partition references unknown shard %q", p.Shard)
		}
		if p.IsDefault() {
			defaultShards[p.Shard] = struct{}{}
		}
	}
	if len(defaultShards) > 1 {
		return btstatus.New(btstatus.InvalidConfig, "at most one shard may be declared default, found %d", len(defaultShards))
	}

	return nil
}

// DefaultShardName returns the name of the shard bearing the default
// area, if any.
func (c Config) DefaultShardName() (string, bool) {
	for _, p := range c.Partitions {
		if p.IsDefault() {
			return p.Shard, true
		}
	}
	return "", false
}
