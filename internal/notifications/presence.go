package notifications

import (
	"context"
	"strconv"
	"sync"
	"time"

	"vidtube/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	presenceOnlineSetKey  = "ws:online_users"
	presenceLastSeenKeyNS = "ws:last_seen:"
	presenceTTL           = 90 * time.Second
	offlineGrace          = 5 * time.Second
	reaperInterval        = 60 * time.Second
)

// Presence tracks which users hold a live socket. Local counts are authoritative for this
// instance and Redis mirrors them so other instances can answer IsOnline.
type Presence struct {
	rdb *redis.Client

	mu            sync.RWMutex
	localCounts   map[string]int
	offlineTimers map[string]*time.Timer
	grace         time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewPresence creates a tracker and starts the stale-entry reaper when Redis is available.
func NewPresence(rdb *redis.Client) *Presence {
	p := &Presence{
		rdb:           rdb,
		localCounts:   make(map[string]int),
		offlineTimers: make(map[string]*time.Timer),
		grace:         offlineGrace,
		stopCh:        make(chan struct{}),
	}
	if rdb != nil {
		go p.reaperLoop()
	}
	return p
}

func (p *Presence) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
		p.mu.Lock()
		for userID, timer := range p.offlineTimers {
			timer.Stop()
			delete(p.offlineTimers, userID)
		}
		p.mu.Unlock()
	})
}

func (p *Presence) Register(ctx context.Context, userID string) {
	p.mu.Lock()
	if t, ok := p.offlineTimers[userID]; ok {
		t.Stop()
		delete(p.offlineTimers, userID)
	}
	p.localCounts[userID]++
	p.mu.Unlock()

	p.Touch(ctx, userID)
}

// Touch refreshes the user's last-seen key.
func (p *Presence) Touch(ctx context.Context, userID string) {
	if p.rdb == nil {
		return
	}
	if err := p.rdb.SAdd(ctx, presenceOnlineSetKey, userID).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "presence SADD failed", "user_id", userID, "error", err)
	}
	if err := p.rdb.SetEx(ctx, presenceLastSeenKeyNS+userID, strconv.FormatInt(time.Now().Unix(), 10), presenceTTL).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "presence SETEX failed", "user_id", userID, "error", err)
	}
}

// Unregister drops one connection. The user goes offline after the grace period unless
// they reconnect first.
func (p *Presence) Unregister(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := p.localCounts[userID] - 1; n > 0 {
		p.localCounts[userID] = n
		return
	}
	delete(p.localCounts, userID)

	if t, ok := p.offlineTimers[userID]; ok {
		t.Stop()
	}
	p.offlineTimers[userID] = time.AfterFunc(p.grace, func() {
		p.finalizeOffline(context.Background(), userID)
	})
}

func (p *Presence) IsOnline(ctx context.Context, userID string) bool {
	p.mu.RLock()
	local := p.localCounts[userID] > 0
	p.mu.RUnlock()
	if local || p.rdb == nil {
		return local
	}

	exists, err := p.rdb.Exists(ctx, presenceLastSeenKeyNS+userID).Result()
	return err == nil && exists > 0
}

func (p *Presence) finalizeOffline(ctx context.Context, userID string) {
	p.mu.Lock()
	delete(p.offlineTimers, userID)
	hasLocal := p.localCounts[userID] > 0
	p.mu.Unlock()
	if hasLocal || p.rdb == nil {
		return
	}

	_ = p.rdb.Del(ctx, presenceLastSeenKeyNS+userID).Err()
	_ = p.rdb.SRem(ctx, presenceOnlineSetKey, userID).Err()
}

// reapOnce removes online-set members whose last-seen key has expired.
func (p *Presence) reapOnce(ctx context.Context) {
	members, err := p.rdb.SMembers(ctx, presenceOnlineSetKey).Result()
	if err != nil {
		return
	}
	for _, userID := range members {
		exists, err := p.rdb.Exists(ctx, presenceLastSeenKeyNS+userID).Result()
		if err != nil || exists > 0 {
			continue
		}
		_ = p.rdb.SRem(ctx, presenceOnlineSetKey, userID).Err()
	}
}

func (p *Presence) reaperLoop() {
	ticker := time.NewTicker(reaperInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.reapOnce(context.Background())
		}
	}
}
