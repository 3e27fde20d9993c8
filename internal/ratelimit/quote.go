package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/smallbiznis/fareway/internal/config"
)

const (
	keyQuoteOrg   = "quote:org:%s"
	keyCreditLock = "credit:%s"
)

// QuoteLimiter throttles quote requests per organization and hands out
// per-organization credit locks. Everything degrades to a no-op when
// redis is not configured; the DB row lock stays the correctness
// backstop for credit mutations.
type QuoteLimiter struct {
	enabled bool

	bucket *TokenBucket
	locker *Locker
	holder *config.CatalogConfigHolder
}

func NewQuoteLimiter(cfg config.Config, holder *config.CatalogConfigHolder) *QuoteLimiter {
	if !cfg.RedisEnabled() {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     strings.TrimSpace(cfg.RedisAddr),
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &QuoteLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
		holder:  holder,
	}
}

func (l *QuoteLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// AllowQuote consumes one quote token for the organization. Rate and
// burst follow the hot-reloaded catalog config.
func (l *QuoteLimiter) AllowQuote(ctx context.Context, orgID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	cfg := l.holder.Current()
	if cfg.QuoteRatePerSecond <= 0 || cfg.QuoteBurst <= 0 {
		return true, nil
	}
	key := fmt.Sprintf(keyQuoteOrg, strings.TrimSpace(orgID))
	return l.bucket.Allow(ctx, key, float64(cfg.QuoteRatePerSecond), cfg.QuoteBurst)
}

// TryLockCredit takes the per-organization credit lock. The returned
// token must be passed back to ReleaseCredit.
func (l *QuoteLimiter) TryLockCredit(ctx context.Context, orgID string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	ttl := l.holder.Current().CreditLockTTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	key := fmt.Sprintf(keyCreditLock, strings.TrimSpace(orgID))
	return l.locker.TryLock(ctx, key, ttl)
}

func (l *QuoteLimiter) ReleaseCredit(ctx context.Context, orgID, token string) error {
	if !l.Enabled() {
		return nil
	}
	key := fmt.Sprintf(keyCreditLock, strings.TrimSpace(orgID))
	return l.locker.Release(ctx, key, token)
}
