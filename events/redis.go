package events

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// VoteChannel is the pub/sub channel carrying vote events between instances.
const VoteChannel = "polls:votes"

// RedisPublisher publishes vote events on a redis pub/sub channel.
// The client is owned by the caller.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event VoteEvent) error {
	data, err := event.Encode()
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish vote event to %s: %w", p.channel, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error { return nil }

// Relay forwards events from the redis channel to dst until ctx is done.
func Relay(ctx context.Context, client *redis.Client, channel string, dst Publisher) error {
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	// wait for the subscription to be confirmed
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}
	log.Printf("relaying vote events from redis channel %s", channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			event, err := DecodeVoteEvent([]byte(msg.Payload))
			if err != nil {
				log.Printf("dropping malformed vote event: %v", err)
				continue
			}
			if err := dst.Publish(ctx, event); err != nil {
				log.Printf("relay vote event %s failed: %v", event.ID, err)
			}
		}
	}
}
