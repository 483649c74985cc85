package services

import (
	"context"
	"errors"
	"sync"
	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pausingLedger holds the first Summary call after it has read the ledger, until resume is closed.
type pausingLedger struct {
	repository.LedgerStore
	once   sync.Once
	read   chan struct{}
	resume chan struct{}
}

func (l *pausingLedger) Summary(ctx context.Context, orderItemID uint) (*models.PaymentSummary, error) {
	summary, err := l.LedgerStore.Summary(ctx, orderItemID)
	first := false
	l.once.Do(func() { first = true })
	if first {
		close(l.read)
		<-l.resume
	}
	return summary, err
}

func TestSummaryReadBeforePaymentDoesNotStayCached(t *testing.T) {
	ledger := &pausingLedger{read: make(chan struct{}), resume: make(chan struct{})}
	h := newHarness(func(deps *OrderItemServiceDeps) {
		ledger.LedgerStore = deps.Ledger
		deps.Ledger = ledger
	})
	id := h.db.addItem(ownerID, models.ServiceRepair, 1000)
	ctx := context.Background()

	type read struct {
		summary *models.PaymentSummary
		err     error
	}
	done := make(chan read, 1)
	go func() {
		summary, err := h.svc.GetPaymentSummary(ctx, id, owner)
		done <- read{summary, err}
	}()

	<-ledger.read
	_, err := h.pay(id, "300", owner)
	require.NoError(t, err)
	close(ledger.resume)

	early := <-done
	require.NoError(t, early.err)
	assert.Equal(t, int64(0), early.summary.TotalTransactions)

	summary, err := h.svc.GetPaymentSummary(ctx, id, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TotalTransactions)
	assert.True(t, dec("300").Equal(summary.TotalAmount))
}

func TestSummaryCacheDroppedWhenRefreshFails(t *testing.T) {
	h := newHarness()
	id := h.db.addItem(ownerID, models.ServiceRepair, 1000)
	ctx := context.Background()

	_, err := h.svc.GetPaymentSummary(ctx, id, owner)
	require.NoError(t, err)
	_, cached := h.cache.cached(id)
	require.True(t, cached)

	h.cache.setErr = errors.New("redis: connection pool timeout")
	_, err = h.pay(id, "100", owner)
	require.NoError(t, err)

	_, cached = h.cache.cached(id)
	assert.False(t, cached)
	assert.Equal(t, []uint{id}, h.cache.invalidated)

	h.cache.setErr = nil
	summary, err := h.svc.GetPaymentSummary(ctx, id, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TotalTransactions)
}

func TestLockReleaseFailureIsLogged(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	h := newHarness(func(deps *OrderItemServiceDeps) { deps.Logger = log })
	h.locker.releaseErr = errors.New("order item lock expired before release")
	id := h.db.addItem(ownerID, models.ServiceRepair, 1000)

	res, err := h.pay(id, "100", owner)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPartial, res.PaymentStatus)
	assert.Equal(t, 1, h.locker.released)

	var found bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel && entry.Message == "order item lock expired before release" {
			found = true
			assert.Equal(t, id, entry.Data["data"])
		}
	}
	assert.True(t, found, "lock release failure should be logged")
}
