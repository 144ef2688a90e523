package main

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/arloliu/solo"
	"github.com/arloliu/solo/admin"
	"github.com/arloliu/solo/gate"
	"github.com/arloliu/solo/internal/metrics"
	"github.com/arloliu/solo/subscription"
	"github.com/arloliu/solo/types"
)

// app wires the election manager, the gate, the relay and the admin server.
type app struct {
	cfg       hostConfig
	logger    types.Logger
	registry  *prometheus.Registry
	gate      *gate.Gate
	manager   *solo.Manager
	publisher *subscription.GatedPublisher
	consumers []*subscription.GatedConsumer
	server    *admin.Server

	cancelWatch context.CancelFunc
	unsubscribe func()
	adminAddr   net.Addr
}

func newApp(ctx context.Context, cfg hostConfig, nc *nats.Conn, logger types.Logger) (*app, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	store, err := solo.OpenNATSLeaseStore(ctx, js, &cfg.Election)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewPrometheus(reg, "solo")

	g := gate.New(gate.WithLogger(logger), gate.WithMetrics(collector))
	pub := subscription.NewGatedPublisher(js, cfg.Relay.Prefix, logger)

	a := &app{
		cfg:       cfg,
		logger:    logger,
		registry:  reg,
		gate:      g,
		publisher: pub,
	}

	for _, cc := range cfg.Consumers {
		cc.Logger = logger
		consumer, err := subscription.NewGatedConsumer(js, cc, relayHandler(pub))
		if err != nil {
			return nil, fmt.Errorf("consumer %s/%s: %w", cc.StreamName, cc.Durable, err)
		}
		if err := g.Register(ctx, consumer); err != nil {
			return nil, err
		}
		a.consumers = append(a.consumers, consumer)
	}

	mgr, err := solo.NewManager(&cfg.Election, store, g,
		solo.WithLogger(logger),
		solo.WithMetrics(collector),
		solo.WithHooks(&solo.Hooks{
			OnStateChanged: func(_ context.Context, from, to solo.State) error {
				logger.Info("leadership changed", "from", from.String(), "to", to.String())
				return nil
			},
		}),
	)
	if err != nil {
		return nil, err
	}
	a.manager = mgr

	router := admin.NewRouter(mgr, admin.WithLogger(logger), admin.WithGatherer(reg))
	a.server = admin.NewServer(cfg.Admin.Addr, router, logger)

	return a, nil
}

// relayHandler republishes every consumed message under the relay prefix.
func relayHandler(pub *subscription.GatedPublisher) subscription.MessageHandler {
	return subscription.MessageHandlerFunc(func(ctx context.Context, msg jetstream.Msg) error {
		_, err := pub.Publish(ctx, msg.Subject(), msg.Data())
		return err
	})
}

func (a *app) start(ctx context.Context) error {
	events, unsubscribe := a.gate.Subscribe()
	watchCtx, cancel := context.WithCancel(context.Background())
	a.unsubscribe = unsubscribe
	a.cancelWatch = cancel
	go a.publisher.Watch(watchCtx, events)

	addr, err := a.server.Start()
	if err != nil {
		cancel()
		unsubscribe()

		return err
	}
	a.adminAddr = addr

	if err := a.manager.Start(ctx); err != nil {
		_ = a.server.Shutdown(ctx)
		cancel()
		unsubscribe()

		return fmt.Errorf("failed to start election: %w", err)
	}

	a.logger.Info("solo started",
		"lease_id", a.cfg.Election.LeaseID,
		"token", a.manager.Identity().Token,
		"consumers", len(a.consumers),
		"admin", addr.String(),
	)

	return nil
}

func (a *app) stop(ctx context.Context) error {
	var errs []error

	if err := a.manager.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop election: %w", err))
	}
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop admin server: %w", err))
	}

	a.cancelWatch()
	a.unsubscribe()
	a.gate.Shutdown()

	return errors.Join(errs...)
}
