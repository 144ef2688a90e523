package solo

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the configuration for the Manager.
//
// All duration fields accept Go duration strings like "500ms", "1s", "10s".
type Config struct {
	// LeaseID is the key of the shared lease record. Every instance competing
	// for the same active role must use the same LeaseID.
	LeaseID string `yaml:"leaseId"`

	// LeaderCheckInterval is how often a follower probes the lease.
	// Shorter intervals shorten failover at the cost of store traffic.
	LeaderCheckInterval time.Duration `yaml:"leaderCheckInterval"`

	// HeartbeatInterval is how often the leader refreshes lastHeartbeat.
	HeartbeatInterval time.Duration `yaml:"heartbeatInterval"`

	// HeartbeatExpiration is how old lastHeartbeat must be before another
	// instance may take the lease over. It bounds the failover time after a
	// leader crash, and must comfortably exceed HeartbeatInterval plus the
	// clock skew between instances.
	HeartbeatExpiration time.Duration `yaml:"heartbeatExpiration"`

	// OperationTimeout bounds every single lease store call.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// ShutdownTimeout bounds the release write performed by Stop and Release.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// LeaseBucket is the NATS JetStream KV bucket holding the lease record.
	// Only used by OpenNATSLeaseStore.
	LeaseBucket string `yaml:"leaseBucket"`

	// LeaseBucketReplicas is the replica count used when the bucket is created.
	LeaseBucketReplicas int `yaml:"leaseBucketReplicas"`
}

// DefaultConfig returns a Config with production defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		LeaseID:             "solo-leader",
		LeaderCheckInterval: 1 * time.Second,
		HeartbeatInterval:   1 * time.Second,
		HeartbeatExpiration: 10 * time.Second,
		OperationTimeout:    5 * time.Second,
		ShutdownTimeout:     10 * time.Second,
		LeaseBucket:         "solo-lease",
		LeaseBucketReplicas: 1,
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.LeaseID == "" {
		cfg.LeaseID = defaults.LeaseID
	}
	if cfg.LeaderCheckInterval == 0 {
		cfg.LeaderCheckInterval = defaults.LeaderCheckInterval
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = defaults.HeartbeatInterval
	}
	if cfg.HeartbeatExpiration == 0 {
		cfg.HeartbeatExpiration = defaults.HeartbeatExpiration
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if cfg.LeaseBucket == "" {
		cfg.LeaseBucket = defaults.LeaseBucket
	}
	if cfg.LeaseBucketReplicas == 0 {
		cfg.LeaseBucketReplicas = defaults.LeaseBucketReplicas
	}
}

// Validate checks configuration constraints.
//
// Hard Validation Rules:
//   - LeaseID is not empty
//   - LeaderCheckInterval, HeartbeatInterval, OperationTimeout > 0
//   - HeartbeatExpiration >= 2 * HeartbeatInterval (allow one missed heartbeat)
//   - OperationTimeout <= HeartbeatExpiration (a slow write must not outlive the lease)
//
// Returns:
//   - error: Validation error wrapping ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	if cfg.LeaseID == "" {
		return fmt.Errorf("%w: LeaseID must not be empty", ErrInvalidConfig)
	}

	if cfg.LeaderCheckInterval <= 0 {
		return fmt.Errorf("%w: LeaderCheckInterval must be > 0, got %v", ErrInvalidConfig, cfg.LeaderCheckInterval)
	}

	if cfg.HeartbeatInterval <= 0 {
		return fmt.Errorf("%w: HeartbeatInterval must be > 0, got %v", ErrInvalidConfig, cfg.HeartbeatInterval)
	}

	if cfg.OperationTimeout <= 0 {
		return fmt.Errorf("%w: OperationTimeout must be > 0, got %v", ErrInvalidConfig, cfg.OperationTimeout)
	}

	if cfg.HeartbeatExpiration < 2*cfg.HeartbeatInterval {
		return fmt.Errorf(
			"%w: HeartbeatExpiration (%v) must be >= 2*HeartbeatInterval (%v) to allow one missed heartbeat",
			ErrInvalidConfig, cfg.HeartbeatExpiration, cfg.HeartbeatInterval,
		)
	}

	if cfg.OperationTimeout > cfg.HeartbeatExpiration {
		return fmt.Errorf(
			"%w: OperationTimeout (%v) must be <= HeartbeatExpiration (%v)",
			ErrInvalidConfig, cfg.OperationTimeout, cfg.HeartbeatExpiration,
		)
	}

	return nil
}

// ValidateWithWarnings logs warnings for legal but risky values.
//
// This is called after Validate() in NewManager() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.HeartbeatExpiration < 3*cfg.HeartbeatInterval {
		logger.Warn(
			"HeartbeatExpiration leaves little room for missed heartbeats",
			"heartbeatExpiration", cfg.HeartbeatExpiration,
			"heartbeatInterval", cfg.HeartbeatInterval,
			"recommended", 3*cfg.HeartbeatInterval,
		)
	}

	if cfg.LeaderCheckInterval > cfg.HeartbeatExpiration {
		logger.Warn(
			"LeaderCheckInterval exceeds HeartbeatExpiration, failover will be slow",
			"leaderCheckInterval", cfg.LeaderCheckInterval,
			"heartbeatExpiration", cfg.HeartbeatExpiration,
		)
	}

	if cfg.OperationTimeout > cfg.HeartbeatExpiration/2 {
		logger.Warn(
			"OperationTimeout is more than half of HeartbeatExpiration",
			"operationTimeout", cfg.OperationTimeout,
			"heartbeatExpiration", cfg.HeartbeatExpiration,
		)
	}
}

// TestConfig returns a configuration with fast timings for tests.
//
// Example:
//
//	cfg := solo.TestConfig()
//	cfg.LeaseID = "test-" + t.Name()
//	mgr, err := solo.NewManager(&cfg, store, gate)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.LeaderCheckInterval = 50 * time.Millisecond
	cfg.HeartbeatInterval = 50 * time.Millisecond
	cfg.HeartbeatExpiration = 300 * time.Millisecond
	cfg.OperationTimeout = 200 * time.Millisecond
	cfg.ShutdownTimeout = time.Second

	return cfg
}

// LoadConfig reads a YAML configuration file and applies defaults.
//
// The file is validated; an invalid file returns an error wrapping ErrInvalidConfig.
//
// Example file:
//
//	leaseId: job-service-leader
//	heartbeatInterval: 1s
//	heartbeatExpiration: 10s
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes YAML configuration, applies defaults and validates it.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
