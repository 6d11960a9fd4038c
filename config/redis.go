package config

import "time"

// RedisConfig contains Redis configuration for the session cache.
type RedisConfig struct {
	// Enabled selects Redis for the session cache; when false an in-process
	// cache is used (single replica, lost on restart).
	Enabled bool `env:"ENABLED" envDefault:"true"`

	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`

	// KeyPrefix namespaces every session key.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"session:"`

	// DialTimeout bounds the startup ping.
	DialTimeout time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
}
