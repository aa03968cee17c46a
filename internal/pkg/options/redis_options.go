package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// RedisOptions configures the hot-tier store. When Enabled is false the
// process falls back to the in-process hot store, which keeps the same
// contract but loses state on restart.
type RedisOptions struct {
	Enabled  bool   `json:"enabled"  mapstructure:"enabled"`
	Addr     string `json:"addr"     mapstructure:"addr"`
	Password string `json:"password" mapstructure:"password"`
	DB       int    `json:"db"       mapstructure:"db"`
}

// NewRedisOptions creates RedisOptions with defaults.
func NewRedisOptions() *RedisOptions {
	return &RedisOptions{
		Enabled: true,
		Addr:    "127.0.0.1:6379",
		DB:      0,
	}
}

// Validate checks the options.
func (o *RedisOptions) Validate() []error {
	var errs []error
	if o.Enabled && o.Addr == "" {
		errs = append(errs, fmt.Errorf("redis.addr is required when redis is enabled"))
	}
	if o.DB < 0 || o.DB > 15 {
		errs = append(errs, fmt.Errorf("redis.db %d must be between 0 and 15", o.DB))
	}
	return errs
}

// AddFlags adds flags for the redis options to the given flag set.
func (o *RedisOptions) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Enabled, "redis.enabled", o.Enabled, "Use redis as the hot store; fall back to in-memory when false.")
	fs.StringVar(&o.Addr, "redis.addr", o.Addr, "Redis server address host:port.")
	fs.StringVar(&o.Password, "redis.password", o.Password, "Redis password.")
	fs.IntVar(&o.DB, "redis.db", o.DB, "Redis database index.")
}
