package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/exstem-quiz/internal/config"
)

// MonitorEventType names a quiz lifecycle transition.
type MonitorEventType string

const (
	MonitorEventLoaded        MonitorEventType = "loaded"
	MonitorEventSubmitted     MonitorEventType = "submitted"
	MonitorEventAutoSubmitted MonitorEventType = "auto_submitted"
)

// MonitorEvent is broadcast to an external proctor display.
type MonitorEvent struct {
	Event         MonitorEventType `json:"event"`
	SessionID     string           `json:"session_id"`
	QuestionCount int              `json:"question_count"`
	Correct       *int             `json:"correct,omitempty"`
	Total         *int             `json:"total,omitempty"`
	At            time.Time        `json:"at"`
}

// EventPublisher delivers monitor events. Implementations must not block for long.
type EventPublisher interface {
	Publish(ctx context.Context, event MonitorEvent) error
}

// RedisPublisher publishes monitor events on the session's Redis PubSub channel.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher creates a RedisPublisher.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish encodes the event as JSON and publishes it.
func (p *RedisPublisher) Publish(ctx context.Context, event MonitorEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode monitor event: %w", err)
	}
	channel := config.CacheKey.QuizMonitorChannel(event.SessionID)
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}
