package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/questx-lab/raffle/pkg/pubsub"
	"github.com/stretchr/testify/require"
)

func TestPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		require.Equal(t, []byte(`{"type":"winner_picked"}`), val)
		return nil
	})

	p := newPublisherWithProducer("raffle", nil, producer)
	err := p.Publish(context.Background(), "raffle_event", &pubsub.Pack{
		Key: []byte("1"),
		Msg: []byte(`{"type":"winner_picked"}`),
	})
	require.NoError(t, err)
	require.NoError(t, p.Stop(context.Background()))
}

func TestPublisher_PublishFailed(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := newPublisherWithProducer("raffle", nil, producer)
	err := p.Publish(context.Background(), "raffle_event", &pubsub.Pack{Msg: []byte("x")})
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}

func TestConsumerGroupHandler_Handle(t *testing.T) {
	var got []*pubsub.Pack
	h := newConsumerGroupHandler(context.Background(), func(_ context.Context, p *pubsub.Pack, _ time.Time) {
		got = append(got, p)
	})

	require.NoError(t, h.Setup(nil))
	require.NoError(t, h.Setup(nil))

	select {
	case <-h.ready:
	default:
		t.Fatal("handler is not ready after setup")
	}

	h.handle(&sarama.ConsumerMessage{Key: []byte("k"), Value: []byte("v"), Timestamp: time.Now()})
	require.Equal(t, []*pubsub.Pack{{Key: []byte("k"), Msg: []byte("v")}}, got)
}
