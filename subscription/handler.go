package subscription

import (
	"context"

	"github.com/nats-io/nats.go/jetstream"
)

// MessageHandler processes messages delivered by a GatedConsumer.
//
// Messages are only delivered while the gate is open, that is, while this
// instance is the leader.
//
// By default the consumer ACKs when Handle returns nil and NAKs when it
// returns an error. With ConsumerConfig.ManualAck the handler owns the
// disposition and must call msg.Ack/Nak/Term itself.
//
// Delivery is at-least-once. A message in flight when leadership moves may
// be redelivered to the new leader, so handlers must be idempotent.
//
// Example:
//
//	h := subscription.MessageHandlerFunc(func(ctx context.Context, msg jetstream.Msg) error {
//	    return process(ctx, msg.Data())
//	})
type MessageHandler interface {
	Handle(ctx context.Context, msg jetstream.Msg) error
}

// MessageHandlerFunc is a function adapter for MessageHandler.
type MessageHandlerFunc func(ctx context.Context, msg jetstream.Msg) error

// Handle implements MessageHandler.
func (f MessageHandlerFunc) Handle(ctx context.Context, msg jetstream.Msg) error { return f(ctx, msg) }
