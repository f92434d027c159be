package realtime

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// envelope is what travels over the Redis channel.
type envelope struct {
	UserID  string `json:"userId"`
	Payload []byte `json:"payload"`
}

// RedisPublisher fans events out to every instance through a pub/sub
// channel. Each instance runs Subscribe to relay them into its own hub.
type RedisPublisher struct {
	rc      *redis.Client
	channel string
	logger  logrus.FieldLogger
}

func NewRedisPublisher(rc *redis.Client, channel string, logger logrus.FieldLogger) *RedisPublisher {
	return &RedisPublisher{rc: rc, channel: channel, logger: logger}
}

func (p *RedisPublisher) Publish(ctx context.Context, userID string, evt Event) {
	payload, err := encodeEvent(userID, evt)
	if err != nil {
		p.logger.WithError(err).WithField("event", evt.Type).Warn("realtime: encode event")
		return
	}
	data, err := sonic.Marshal(envelope{UserID: userID, Payload: payload})
	if err != nil {
		p.logger.WithError(err).Warn("realtime: encode envelope")
		return
	}
	if err := p.rc.Publish(ctx, p.channel, data).Err(); err != nil {
		p.logger.WithError(err).WithFields(logrus.Fields{
			"event":   evt.Type,
			"user_id": userID,
		}).Warn("realtime: publish event")
	}
}

// Subscribe relays events from channel into hub until ctx is cancelled,
// resubscribing if the channel closes.
func Subscribe(ctx context.Context, rc *redis.Client, channel string, hub *Hub, logger logrus.FieldLogger) {
	for {
		sub := rc.Subscribe(ctx, channel)
		relay(ctx, sub.Channel(), hub, logger)
		_ = sub.Close()
		if ctx.Err() != nil {
			return
		}
		logger.Error("realtime: pubsub channel closed, reconnecting")
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func relay(ctx context.Context, ch <-chan *redis.Message, hub *Hub, logger logrus.FieldLogger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := sonic.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logger.WithError(err).Warn("realtime: unable to parse event")
				continue
			}
			hub.Broadcast(env.UserID, env.Payload)
		}
	}
}
