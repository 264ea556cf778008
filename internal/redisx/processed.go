// Package redisx holds the Redis-backed processed-webhook log. It is a
// best-effort fast path; the database transition guard stays authoritative.
package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyProcessedWebhook = "webhook:processed:%s:%s" // invoice/external id, mapped status

	// TTLProcessed covers the issuer's redelivery window with room to spare.
	TTLProcessed = 24 * time.Hour
)

// ProcessedLog records webhook deliveries that have already been applied.
// A nil *ProcessedLog is valid and reports nothing as seen.
type ProcessedLog struct {
	rdb *redis.Client
}

func NewProcessedLog(rdb *redis.Client) *ProcessedLog {
	if rdb == nil {
		return nil
	}
	return &ProcessedLog{rdb: rdb}
}

// Seen reports whether this (identifier, status) delivery was already
// applied. Errors are treated as "not seen".
func (l *ProcessedLog) Seen(ctx context.Context, id, status string) bool {
	if l == nil || l.rdb == nil {
		return false
	}
	n, err := l.rdb.Exists(ctx, fmt.Sprintf(keyProcessedWebhook, id, status)).Result()
	return err == nil && n > 0
}

// Mark records a delivery as applied. Failures are ignored.
func (l *ProcessedLog) Mark(ctx context.Context, id, status string) {
	if l == nil || l.rdb == nil {
		return
	}
	_ = l.rdb.Set(ctx, fmt.Sprintf(keyProcessedWebhook, id, status), "1", TTLProcessed).Err()
}
