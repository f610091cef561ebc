// Package config loads the engine's runtime-tunable constants via
// spf13/viper (grounded on Aidin1998-finalex's configuration layer).
// The UDP port is deliberately NOT owned here: spec §6 fixes it as a
// single positional CLI argument, validated in cmd/matchcored.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds every compile-time constant the spec allows to be
// tuned, with defaults matching the spec's own numbers.
type Config struct {
	// MaxDepth is loaded but not applied: book.MaxDepth is a
	// compile-time constant (100) and nothing reads this field.
	MaxDepth int `mapstructure:"max_depth"`

	// RingCapacityBook and RingCapacityMatch are rounded up to a power
	// of two by internal/ring.New regardless of what's configured here.
	RingCapacityBook  int `mapstructure:"ring_capacity_book"`
	RingCapacityMatch int `mapstructure:"ring_capacity_match"`

	// BookWorkers and MatchWorkers size the two worker pools (spec
	// §4.E: "the number of workers per side is a configuration
	// constant").
	BookWorkers  int `mapstructure:"book_workers"`
	MatchWorkers int `mapstructure:"match_workers"`

	// RetireRingSize sizes the book-state reclaim ring (0 disables
	// retirement; see internal/memory's doc comment).
	RetireRingSize uint64 `mapstructure:"retire_ring_size"`

	// KafkaBrokers feeds both the Sarama and kafka-go broadcaster
	// clients.
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	TradesTopic  string   `mapstructure:"trades_topic"`
	TicksTopic   string   `mapstructure:"ticks_topic"`

	// GRPCAddr is the diagnostics API's listen address.
	GRPCAddr string `mapstructure:"grpc_addr"`
	// MetricsAddr is the Prometheus /metrics listen address.
	MetricsAddr string `mapstructure:"metrics_addr"`

	// PebbleDir is where the broadcaster's ack-state store lives.
	PebbleDir string `mapstructure:"pebble_dir"`
}

func defaults() Config {
	return Config{
		MaxDepth:          100,
		RingCapacityBook:  1 << 16,
		RingCapacityMatch: 1 << 16,
		BookWorkers:       4,
		MatchWorkers:      4,
		RetireRingSize:    1 << 12,
		KafkaBrokers:      []string{"localhost:9092"},
		TradesTopic:       "matchcore.trades",
		TicksTopic:        "matchcore.ticks",
		GRPCAddr:          ":50051",
		MetricsAddr:       ":9090",
		PebbleDir:         "./data/broadcaster-ack",
	}
}

// Load reads configuration from environment variables prefixed
// MATCHCORE_ (e.g. MATCHCORE_BOOK_WORKERS) and an optional config file
// named matchcore.yaml on the given search paths, layered over
// defaults().
func Load(configPaths ...string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("matchcore")
	v.AutomaticEnv()

	cfg := defaults()
	setDefaults(v, cfg)

	v.SetConfigName("matchcore")
	v.SetConfigType("yaml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return out, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("max_depth", cfg.MaxDepth)
	v.SetDefault("ring_capacity_book", cfg.RingCapacityBook)
	v.SetDefault("ring_capacity_match", cfg.RingCapacityMatch)
	v.SetDefault("book_workers", cfg.BookWorkers)
	v.SetDefault("match_workers", cfg.MatchWorkers)
	v.SetDefault("retire_ring_size", cfg.RetireRingSize)
	v.SetDefault("kafka_brokers", cfg.KafkaBrokers)
	v.SetDefault("trades_topic", cfg.TradesTopic)
	v.SetDefault("ticks_topic", cfg.TicksTopic)
	v.SetDefault("grpc_addr", cfg.GRPCAddr)
	v.SetDefault("metrics_addr", cfg.MetricsAddr)
	v.SetDefault("pebble_dir", cfg.PebbleDir)
}

// MinPort and MaxPort bound the single positional UDP port argument
// (spec §6).
const (
	MinPort = 49152
	MaxPort = 65535
)

// ValidatePort checks port against the spec's allowed range.
func ValidatePort(port int) error {
	if port < MinPort || port > MaxPort {
		return fmt.Errorf("config: port %d out of range [%d, %d]", port, MinPort, MaxPort)
	}
	return nil
}
