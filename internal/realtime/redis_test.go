package realtime

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestRedisPublisher_RelaysIntoHub(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	hub := NewHub()
	c := &fakeClient{}
	hub.Register("u-1", c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Subscribe(ctx, rc, "events", hub, logrus.New())
		close(done)
	}()
	waitFor(t, func() bool { return len(mr.PubSubChannels("events")) == 1 })

	pub := NewRedisPublisher(rc, "events", logrus.New())
	pub.Publish(context.Background(), "u-1", Event{Type: EventNotificationCreated, NotificationID: "n-1"})

	waitFor(t, func() bool { return len(c.received()) == 1 })
	var evt Event
	require.NoError(t, sonic.Unmarshal(c.received()[0], &evt))
	require.Equal(t, EventNotificationCreated, evt.Type)
	require.Equal(t, "n-1", evt.NotificationID)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Subscribe did not exit")
	}
}

func TestRelay_SkipsMalformedMessages(t *testing.T) {
	hub := NewHub()
	c := &fakeClient{}
	hub.Register("u-1", c)

	ch := make(chan *redis.Message, 2)
	ch <- &redis.Message{Payload: "not json"}
	good, err := sonic.Marshal(envelope{UserID: "u-1", Payload: []byte(`{"type":"x"}`)})
	require.NoError(t, err)
	ch <- &redis.Message{Payload: string(good)}
	close(ch)

	relay(context.Background(), ch, hub, logrus.New())
	require.Len(t, c.received(), 1)
	require.JSONEq(t, `{"type":"x"}`, string(c.received()[0]))
}
