package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/PabloGalante/mind-connect/internal/observability"
)

// ChangeFeed announces collection changes so watchers can re-read a fresh
// snapshot. One topic per collection path.
type ChangeFeed struct {
	pubSub *gochannel.GoChannel
}

func NewChangeFeed() *ChangeFeed {
	return &ChangeFeed{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 16},
			watermill.NopLogger{},
		),
	}
}

func (f *ChangeFeed) notify(topic string) {
	msg := message.NewMessage(watermill.NewUUID(), []byte(topic))
	if err := f.pubSub.Publish(topic, msg); err != nil {
		observability.Logger().Warnw("change feed publish failed", "topic", topic, "error", err)
	}
}

// Close stops every subscription.
func (f *ChangeFeed) Close() error {
	return f.pubSub.Close()
}

// watch emits snapshot() once, then again after every change on topic, until
// ctx is done. The subscription is opened before the first read so no write
// can slip between them.
func watch[T any](ctx context.Context, f *ChangeFeed, topic string, snapshot func() T) (<-chan T, error) {
	changes, err := f.pubSub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("memory watch %s: %w", topic, err)
	}

	out := make(chan T, 1)
	go func() {
		defer close(out)

		send := func(v T) bool {
			select {
			case out <- v:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send(snapshot()) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-changes:
				if !ok {
					return
				}
				msg.Ack()
				if !send(snapshot()) {
					return
				}
			}
		}
	}()
	return out, nil
}

func topic(parts ...string) string {
	return strings.Join(parts, "/")
}
