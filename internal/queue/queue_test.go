package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestMailEvent_RoundTrip(t *testing.T) {
	event := NewEmailRequestedEvent("bob@example.com", "Hi", "<p>x</p>", "follow")

	values, err := event.ToMap()
	require.NoError(t, err)
	assert.Equal(t, EventEmailRequested, values["type"])

	parsed, err := ParseMailEvent(values)
	require.NoError(t, err)
	assert.Equal(t, event, parsed)
}

func TestParseMailEvent_Invalid(t *testing.T) {
	_, err := ParseMailEvent(map[string]interface{}{"type": EventEmailRequested})
	assert.Error(t, err)

	_, err = ParseMailEvent(map[string]interface{}{"data": "{not json"})
	assert.Error(t, err)
}

func TestConsumer_EnsureGroupIsIdempotent(t *testing.T) {
	client := newTestClient(t)
	consumer := NewConsumer(client, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, consumer.EnsureGroup(ctx, StreamMail, ConsumerGroupMail))
	require.NoError(t, consumer.EnsureGroup(ctx, StreamMail, ConsumerGroupMail))
}

func TestPublishThenRead(t *testing.T) {
	client := newTestClient(t)
	publisher := NewPublisher(client, zap.NewNop())
	consumer := NewConsumer(client, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, consumer.EnsureGroup(ctx, StreamMail, ConsumerGroupMail))

	id, err := publisher.PublishEmail(ctx, "alice@example.com", "New comment", "<p>hello</p>", "comment")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	messages, err := consumer.Read(ctx, StreamMail, ConsumerGroupMail, "worker-1", 10, 50*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, id, messages[0].ID)
	assert.Equal(t, "alice@example.com", messages[0].Event.To)
	assert.Equal(t, "comment", messages[0].Event.NotificationType)

	pending, err := consumer.Pending(ctx, StreamMail, ConsumerGroupMail)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	require.NoError(t, consumer.Ack(ctx, StreamMail, ConsumerGroupMail, id))

	pending, err = consumer.Pending(ctx, StreamMail, ConsumerGroupMail)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending)
}

func TestConsumer_ReadPendingReturnsUnacked(t *testing.T) {
	client := newTestClient(t)
	publisher := NewPublisher(client, zap.NewNop())
	consumer := NewConsumer(client, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, consumer.EnsureGroup(ctx, StreamMail, ConsumerGroupMail))
	_, err := publisher.PublishEmail(ctx, "alice@example.com", "s", "h", "like")
	require.NoError(t, err)

	_, err = consumer.Read(ctx, StreamMail, ConsumerGroupMail, "worker-1", 10, 50*time.Millisecond)
	require.NoError(t, err)

	// Simulates a restart: nothing new, but the delivered message was never acked.
	pending, err := consumer.ReadPending(ctx, StreamMail, ConsumerGroupMail, "worker-1", 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "like", pending[0].Event.NotificationType)
}

func TestConsumer_MalformedMessageHasEmptyEvent(t *testing.T) {
	client := newTestClient(t)
	consumer := NewConsumer(client, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, consumer.EnsureGroup(ctx, StreamMail, ConsumerGroupMail))
	id, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamMail,
		Values: map[string]interface{}{"type": EventEmailRequested},
	}).Result()
	require.NoError(t, err)

	messages, err := consumer.Read(ctx, StreamMail, ConsumerGroupMail, "worker-1", 10, 50*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, id, messages[0].ID)
	assert.Equal(t, MailEvent{}, messages[0].Event)
}

func TestConsumer_AckWithoutIDs(t *testing.T) {
	consumer := NewConsumer(newTestClient(t), zap.NewNop())
	assert.NoError(t, consumer.Ack(context.Background(), StreamMail, ConsumerGroupMail))
}
