// internal/app/system/events/events.go
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// Channel names
	ChannelInvalidate    = "innovhub:invalidate"
	ChannelNotifications = "innovhub:notifications"
)

// Notification template keys.
const (
	TemplateOnboardingWelcome    = "onboarding_welcome"
	TemplateRoleRequestSubmitted = "role_request_submitted"
)

// Cache keys named in invalidation signals.
const (
	KeyProfile      = "profile"
	KeyNavigation   = "navigation"
	KeyRoleRequests = "role_requests"
)

// Publisher sends fire-and-forget signals to other parts of the system.
type Publisher interface {
	Invalidate(ctx context.Context, userID string, keys ...string) error
	Notify(ctx context.Context, n Notification) error
}

// Invalidation tells caches holding the listed keys for a user to drop them.
type Invalidation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Keys      []string  `json:"keys"`
	Timestamp time.Time `json:"timestamp"`
}

// Notification asks the notification service to render and deliver a
// template. Delivery and retry belong to the consumer.
type Notification struct {
	ID        string            `json:"id"`
	Template  string            `json:"template"`
	To        string            `json:"to"`
	Lang      string            `json:"lang"`
	Vars      map[string]string `json:"vars,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// RedisPublisher publishes events over Redis pub/sub.
type RedisPublisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisPublisher(rdb *redis.Client, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, logger: logger}
}

// Invalidate publishes an Invalidation on ChannelInvalidate.
func (p *RedisPublisher) Invalidate(ctx context.Context, userID string, keys ...string) error {
	payload, err := encodeInvalidation(userID, keys, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to marshal invalidation: %w", err)
	}
	if err := p.rdb.Publish(ctx, ChannelInvalidate, payload).Err(); err != nil {
		p.logger.Warn("failed to publish invalidation",
			zap.String("user_id", userID),
			zap.Strings("keys", keys),
			zap.Error(err))
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	p.logger.Debug("invalidation published", zap.String("user_id", userID), zap.Strings("keys", keys))
	return nil
}

// Notify publishes n on ChannelNotifications.
func (p *RedisPublisher) Notify(ctx context.Context, n Notification) error {
	payload, err := encodeNotification(n, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := p.rdb.Publish(ctx, ChannelNotifications, payload).Err(); err != nil {
		p.logger.Warn("failed to publish notification",
			zap.String("template", n.Template),
			zap.Error(err))
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	p.logger.Info("notification published",
		zap.String("template", n.Template),
		zap.String("lang", n.Lang))
	return nil
}

func encodeInvalidation(userID string, keys []string, now time.Time) ([]byte, error) {
	if keys == nil {
		keys = []string{}
	}
	return json.Marshal(Invalidation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Keys:      keys,
		Timestamp: now,
	})
}

func encodeNotification(n Notification, now time.Time) ([]byte, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = now
	}
	return json.Marshal(n)
}

// Nop discards every event. Used when Redis is not configured.
type Nop struct{}

func (Nop) Invalidate(context.Context, string, ...string) error { return nil }
func (Nop) Notify(context.Context, Notification) error { return nil }
