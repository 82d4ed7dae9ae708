// Package cache wraps a history provider with a Redis read-through
// cache so repeated scans of the same ticker don't refetch bars.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/leveledge/internal/data"
	"github.com/sawpanic/leveledge/internal/models"
)

// Recorder receives cache hit/miss events. The metrics registry
// satisfies this; a nil Recorder disables recording.
type Recorder interface {
	CacheHit()
	CacheMiss()
}

// intervalTTLs map bar resolution to cache lifetime. Intraday bars go
// stale quickly; weekly bars are good for a day.
var intervalTTLs = map[string]time.Duration{
	"15m": 5 * time.Minute,
	"1h":  15 * time.Minute,
	"1d":  4 * time.Hour,
	"1wk": 24 * time.Hour,
}

const defaultTTL = 15 * time.Minute

// History is a read-through Redis cache in front of a HistoryProvider.
// Cache failures degrade to direct fetches rather than failing the scan.
type History struct {
	inner    data.HistoryProvider
	client   *redis.Client
	recorder Recorder
}

// NewHistory wraps inner with a Redis cache. recorder may be nil.
func NewHistory(inner data.HistoryProvider, client *redis.Client, recorder Recorder) *History {
	return &History{inner: inner, client: client, recorder: recorder}
}

// Bars serves from cache when possible, otherwise fetches and stores.
func (h *History) Bars(ctx context.Context, ticker, interval string, maxBars int) ([]models.Bar, error) {
	key := fmt.Sprintf("bars:%s:%s:%d", ticker, interval, maxBars)

	raw, err := h.client.Get(ctx, key).Bytes()
	if err == nil {
		var bars []models.Bar
		if err := json.Unmarshal(raw, &bars); err == nil {
			h.hit()
			return bars, nil
		}
		log.Warn().Str("key", key).Msg("Corrupt cache entry, refetching")
	} else if err != redis.Nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache read failed, fetching direct")
	}
	h.miss()

	bars, err := h.inner.Bars(ctx, ticker, interval, maxBars)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(bars); err == nil {
		ttl, ok := intervalTTLs[interval]
		if !ok {
			ttl = defaultTTL
		}
		if err := h.client.Set(ctx, key, payload, ttl).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
	}
	return bars, nil
}

func (h *History) hit() {
	if h.recorder != nil {
		h.recorder.CacheHit()
	}
}

func (h *History) miss() {
	if h.recorder != nil {
		h.recorder.CacheMiss()
	}
}
