package domain

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/fatih/structs"
	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/internal/domain/raffle"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/pkg/pubsub"
	"github.com/questx-lab/raffle/pkg/ws"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

// eventPublisher fans out raffle events to kafka and to websocket observers.
// Both sinks are optional.
type eventPublisher struct {
	node      *snowflake.Node
	publisher pubsub.Publisher
	topic     string
	hub       *ws.Hub
}

func newEventPublisher(
	node *snowflake.Node, publisher pubsub.Publisher, topic string, hub *ws.Hub,
) *eventPublisher {
	return &eventPublisher{node: node, publisher: publisher, topic: topic, hub: hub}
}

func (p *eventPublisher) Emit(ctx context.Context, e raffle.Event) {
	event := toModelEvent(p.node.Generate().Int64(), e)
	common.PromCounters[common.RaffleEventTotal].WithLabelValues(event.Type).Inc()

	b, err := json.Marshal(event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal event %s: %v", event.Type, err)
		return
	}

	if p.publisher != nil {
		err := p.publisher.Publish(ctx, p.topic, &pubsub.Pack{
			Key: []byte(strconv.FormatInt(event.ID, 10)),
			Msg: b,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot publish event %d to %s: %v", event.ID, p.topic, err)
		}
	}

	if p.hub != nil && !p.hub.Broadcast(b) {
		xcontext.Logger(ctx).Warnf("Event stream is saturated, dropped event %d", event.ID)
	}
}

func toModelEvent(id int64, e raffle.Event) model.RaffleEvent {
	var data any
	switch e.Type {
	case raffle.RaffleEnterEvent:
		data = model.RaffleEnterData{Player: e.Player.Hex()}
	case raffle.RequestedRaffleWinnerEvent:
		data = model.RequestedRaffleWinnerData{RequestID: bigString(e.RequestID)}
	case raffle.WinnerPickedEvent:
		data = model.WinnerPickedData{
			RequestID: bigString(e.RequestID),
			Winner:    e.Winner.Hex(),
			Prize:     bigString(e.Prize),
		}
	case raffle.RaffleResetEvent:
		data = model.RaffleResetData{RequestID: bigString(e.RequestID)}
	}

	event := model.RaffleEvent{
		ID:   id,
		Type: string(e.Type),
		Time: e.Time,
		Data: map[string]any{},
	}

	if data != nil {
		event.Data = structs.Map(data)
	}

	return event
}
