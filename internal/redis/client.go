package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"tailor_shop/internal/models"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	rdb      *redis.Client
	locker   *redislock.Client
	cacheTTL time.Duration
	lockTTL  time.Duration
}

type Options struct {
	// CacheTTL bounds how long a payment summary is served from Redis.
	CacheTTL time.Duration
	// LockTTL is the lifetime of an item lock and also how long Lock keeps retrying.
	LockTTL time.Duration
}

func Initialize(redisURL string, opts Options) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewClient(rdb, opts), nil
}

// NewClient wraps an existing connection.
func NewClient(rdb *redis.Client, opts Options) *Client {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 10 * time.Second
	}
	return &Client{
		rdb:      rdb,
		locker:   redislock.New(rdb),
		cacheTTL: opts.CacheTTL,
		lockTTL:  opts.LockTTL,
	}
}

func paymentSummaryKey(orderItemID uint) string {
	return fmt.Sprintf("payment_summary:%d", orderItemID)
}

func itemLockKey(orderItemID uint) string {
	return fmt.Sprintf("order_item:%d", orderItemID)
}

// setSummaryScript stores a summary under its transaction count and refuses to replace an
// entry that already covers more transactions.
var setSummaryScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'version')
if current and tonumber(current) > tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'summary', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// Payment summary caching
func (c *Client) GetPaymentSummary(ctx context.Context, orderItemID uint) (*models.PaymentSummary, bool, error) {
	val, err := c.rdb.HGet(ctx, paymentSummaryKey(orderItemID), "summary").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get payment summary: %w", err)
	}

	var summary models.PaymentSummary
	if err := json.Unmarshal(val, &summary); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal payment summary: %w", err)
	}
	return &summary, true, nil
}

// SetPaymentSummary is a no-op when the cached summary covers more transactions.
func (c *Client) SetPaymentSummary(ctx context.Context, orderItemID uint, summary *models.PaymentSummary) error {
	jsonData, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal payment summary: %w", err)
	}
	err = setSummaryScript.Run(ctx, c.rdb, []string{paymentSummaryKey(orderItemID)},
		summary.TotalTransactions, jsonData, c.cacheTTL.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("failed to set payment summary: %w", err)
	}
	return nil
}

func (c *Client) InvalidatePaymentSummary(ctx context.Context, orderItemID uint) error {
	return c.rdb.Del(ctx, paymentSummaryKey(orderItemID)).Err()
}

// Lock obtains the cross-process lock for one order item, retrying until the lock TTL
// elapses or ctx is done. The returned release fails when the lock expired before it.
func (c *Client) Lock(ctx context.Context, orderItemID uint) (func() error, error) {
	ctx, cancel := context.WithTimeout(ctx, c.lockTTL)
	defer cancel()

	lock, err := c.locker.Obtain(ctx, itemLockKey(orderItemID), c.lockTTL, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(100 * time.Millisecond),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, fmt.Errorf("order item %d is locked by another request", orderItemID)
		}
		return nil, fmt.Errorf("failed to obtain order item lock: %w", err)
	}

	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lock.Release(ctx); err != nil {
			if errors.Is(err, redislock.ErrLockNotHeld) {
				return fmt.Errorf("order item %d lock expired before release (ttl %s): %w", orderItemID, c.lockTTL, err)
			}
			return fmt.Errorf("failed to release order item lock: %w", err)
		}
		return nil
	}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
