package subscription

import (
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/solo/internal/logging"
	"github.com/arloliu/solo/types"
)

// ConsumerConfig configures a GatedConsumer.
//
// Required fields:
//   - StreamName
//   - Durable
//
// Zero values of the optional fields are replaced by defaults via applyDefaults().
type ConsumerConfig struct {
	StreamName     string   `yaml:"stream"`
	Durable        string   `yaml:"durable"`
	FilterSubjects []string `yaml:"filterSubjects"`

	AckPolicy         jetstream.AckPolicy `yaml:"-"`
	AckWait           time.Duration       `yaml:"ackWait"`
	MaxDeliver        int                 `yaml:"maxDeliver"`
	InactiveThreshold time.Duration       `yaml:"inactiveThreshold"`
	DrainTimeout      time.Duration       `yaml:"drainTimeout"`

	// ManualAck leaves Ack/Nak/Term to the handler.
	ManualAck bool `yaml:"manualAck"`

	Logger types.Logger `yaml:"-"`
}

// applyDefaults fills unset optional fields.
func (cfg *ConsumerConfig) applyDefaults() {
	if cfg.AckPolicy == 0 {
		cfg.AckPolicy = jetstream.AckExplicitPolicy
	}
	if cfg.AckWait == 0 {
		cfg.AckWait = DefaultAckWait
	}
	if cfg.MaxDeliver == 0 {
		cfg.MaxDeliver = DefaultMaxDeliver
	}
	if cfg.InactiveThreshold == 0 {
		cfg.InactiveThreshold = DefaultInactiveThreshold
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = DefaultDrainTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
}

func (cfg *ConsumerConfig) consumerConfig() jetstream.ConsumerConfig {
	cc := jetstream.ConsumerConfig{
		Durable:           cfg.Durable,
		AckPolicy:         cfg.AckPolicy,
		AckWait:           cfg.AckWait,
		MaxDeliver:        cfg.MaxDeliver,
		InactiveThreshold: cfg.InactiveThreshold,
	}

	switch len(cfg.FilterSubjects) {
	case 0:
	case 1:
		cc.FilterSubject = cfg.FilterSubjects[0]
	default:
		cc.FilterSubjects = cfg.FilterSubjects
	}

	return cc
}
