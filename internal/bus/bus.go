// Package bus abstracts the transport the engine uses to receive client
// commands and publish state-change notifications. Raw MQTT dispatch isn't
// implemented here and no MQTT client exists anywhere in the retrieval pack,
// so Redis Pub/Sub (already used elsewhere for rate limiting) stands in as
// the concrete transport.
package bus

import "context"

// Message is one inbound or outbound envelope. Topic mirrors the original's
// MQTT topic string (e.g. "room/{master}/send/create",
// "room/{master}/res/update"); Payload is the
// already-encoded JSON body.
type Message struct {
	Topic   string
	Payload []byte
}

// Bus is the minimal publish/subscribe contract the engine depends on.
// Subscribe delivers messages on the returned channel until ctx is
// cancelled; the channel is closed on cancellation or on any unrecoverable
// transport error.
type Bus interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topics ...string) (<-chan Message, error)
	Close() error
}
