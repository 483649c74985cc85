package repository

import (
	"context"
	"tailor_shop/internal/models"
	"time"

	"gorm.io/gorm"
)

// Repositories groups the stores that take part in one per-item unit of work.
type Repositories struct {
	Items    OrderItemRepository
	Statuses StatusStore
	Ledger   LedgerStore
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Items:    NewOrderItemRepository(db),
		Statuses: NewStatusStore(db),
		Ledger:   NewLedgerStore(db),
	}
}

// ItemWork runs inside a unit of work with the item row locked.
type ItemWork func(ctx context.Context, repos Repositories, item *models.OrderItem) error

// UnitOfWork serialises all reads and writes for one order item. Either every write made
// by the callback commits or none does.
type UnitOfWork interface {
	RunForItem(ctx context.Context, orderItemID uint, fn ItemWork) error
}

type gormUnitOfWork struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewUnitOfWork(db *gorm.DB, timeout time.Duration) UnitOfWork {
	return &gormUnitOfWork{db: db, timeout: timeout}
}

func (u *gormUnitOfWork) RunForItem(ctx context.Context, orderItemID uint, fn ItemWork) error {
	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := NewRepositories(tx)
		item, err := repos.Items.LockByID(ctx, orderItemID)
		if err != nil {
			return err
		}
		return fn(ctx, repos, item)
	})
}
