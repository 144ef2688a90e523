package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/solo"
	"github.com/arloliu/solo/subscription"
)

// hostConfig is the file format of the solo command.
//
// Example:
//
//	election:
//	  leaseId: orders-relay
//	  heartbeatExpiration: 10s
//	nats:
//	  url: nats://127.0.0.1:4222
//	admin:
//	  addr: ":8080"
//	logLevel: info
//	consumers:
//	  - stream: ORDERS
//	    durable: orders-relay
//	relay:
//	  prefix: relayed
type hostConfig struct {
	Election  solo.Config                   `yaml:"election"`
	NATS      natsConfig                    `yaml:"nats"`
	Admin     adminConfig                   `yaml:"admin"`
	LogLevel  string                        `yaml:"logLevel"`
	Consumers []subscription.ConsumerConfig `yaml:"consumers"`
	Relay     relayConfig                   `yaml:"relay"`
}

type natsConfig struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type adminConfig struct {
	Addr string `yaml:"addr"`
}

type relayConfig struct {
	// Prefix is prepended to the subject of every relayed message.
	Prefix string `yaml:"prefix"`
}

const (
	defaultNATSURL    = "nats://127.0.0.1:4222"
	defaultAdminAddr  = ":8080"
	defaultRelayName  = "relayed"
	defaultClientName = "solo"
)

func defaultHostConfig() hostConfig {
	return hostConfig{
		Election: solo.DefaultConfig(),
		NATS:     natsConfig{URL: defaultNATSURL, Name: defaultClientName},
		Admin:    adminConfig{Addr: defaultAdminAddr},
		LogLevel: "info",
		Relay:    relayConfig{Prefix: defaultRelayName},
	}
}

func loadHostConfig(path string) (hostConfig, error) {
	cfg := defaultHostConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return hostConfig{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return parseHostConfig(data)
}

func parseHostConfig(data []byte) (hostConfig, error) {
	cfg := defaultHostConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return hostConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}

	solo.SetDefaults(&cfg.Election)
	if err := cfg.Election.Validate(); err != nil {
		return hostConfig{}, err
	}

	for i, c := range cfg.Consumers {
		if c.StreamName == "" || c.Durable == "" {
			return hostConfig{}, fmt.Errorf("consumer %d: stream and durable are required", i)
		}
	}

	return cfg, nil
}
