package pubsub

import (
	"context"
	"time"
)

type SubscribeHandler func(context.Context, *Pack, time.Time)

type Subscriber interface {
	// Subscribe blocks until the subscriber joined its group, then delivers
	// messages in the background until ctx is done.
	Subscribe(ctx context.Context)
	Stop(ctx context.Context) error
}
