package redisx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// TrainsPubSub fans out seat-inventory changes so other processes
// (or a future websocket layer) can drop stale availability views.
type TrainsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewTrainsPubSub(rdb *redis.Client) *TrainsPubSub {
	return &TrainsPubSub{
		rdb:     rdb,
		channel: ChannelTrainsChanged(),
	}
}

type trainChangedMsg struct {
	Type    string `json:"type"`
	TrainID string `json:"train_id"`
	Day     int    `json:"day"`
	TsUnix  int64  `json:"ts_unix"`
}

func (p *TrainsPubSub) PublishTrainChanged(ctx context.Context, trainID string, day int) error {
	msg := trainChangedMsg{
		Type:    "train_changed",
		TrainID: trainID,
		Day:     day,
		TsUnix:  time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *TrainsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, trainID string, day int)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev trainChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.TrainID != "" {
				handler(ctx, ev.TrainID, ev.Day)
			}
		}
	}
}
