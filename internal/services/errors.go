package services

import (
	"errors"
	"fmt"
	"strings"
	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	// ErrOrderItemNotFound indicates the order item does not exist.
	ErrOrderItemNotFound = errors.New("order item not found")
	ErrOrderNotFound     = errors.New("order not found")
	// ErrUnauthorized indicates the caller is neither the owner nor an admin.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidAmount indicates a non-positive payment amount.
	ErrInvalidAmount = errors.New("payment amount must be greater than zero")
	// ErrInvalidInput signals malformed caller input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPriceLocked indicates the final price was changed after a payment was recorded.
	ErrPriceLocked = errors.New("final price is locked once a payment exists")
	// ErrItemBusy indicates another request holds the item lock past the deadline.
	ErrItemBusy = errors.New("order item is busy")
)

// InvalidTransitionError reports a status that is not reachable from the current one.
type InvalidTransitionError struct {
	ServiceType models.ServiceType
	From        models.Status
	To          models.Status
	Allowed     []models.Status
}

func (e *InvalidTransitionError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = string(s)
	}
	return fmt.Sprintf("invalid status transition for %s: %s -> %s (allowed: [%s])",
		e.ServiceType, e.From, e.To, strings.Join(allowed, ", "))
}

// OverpaymentError reports a payment that would take total paid above the final price.
type OverpaymentError struct {
	Attempted decimal.Decimal
	Remaining decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment of %s exceeds remaining balance %s", e.Attempted.StringFixed(2), e.Remaining.StringFixed(2))
}

// PersistenceError wraps an underlying storage failure. The operation left no partial state.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: persistence failure: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// classify keeps domain errors intact and wraps everything else as a PersistenceError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var transitionErr *InvalidTransitionError
	var overpaymentErr *OverpaymentError
	var persistenceErr *PersistenceError
	switch {
	case errors.As(err, &transitionErr), errors.As(err, &overpaymentErr), errors.As(err, &persistenceErr):
		return err
	case errors.Is(err, ErrOrderItemNotFound), errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidInput), errors.Is(err, ErrPriceLocked), errors.Is(err, ErrItemBusy):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return ErrOrderItemNotFound
	}
	return &PersistenceError{Op: op, Err: err}
}
