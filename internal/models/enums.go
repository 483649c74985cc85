package models

import "fmt"

// ServiceType determines both the status flow and the payment-derivation rule of an order item.
type ServiceType string

const (
	ServiceRepair        ServiceType = "repair"
	ServiceDryCleaning   ServiceType = "dry_cleaning"
	ServiceCustomization ServiceType = "customization"
	ServiceRental        ServiceType = "rental"
)

func (t ServiceType) Valid() bool {
	switch t {
	case ServiceRepair, ServiceDryCleaning, ServiceCustomization, ServiceRental:
		return true
	}
	return false
}

func ParseServiceType(s string) (ServiceType, error) {
	t := ServiceType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown service type %q", s)
	}
	return t, nil
}

// Status is an order item lifecycle status.
type Status string

const (
	StatusPending       Status = "pending"
	StatusInProgress    Status = "in_progress"
	StatusReadyToPickup Status = "ready_to_pickup"
	StatusPickedUp      Status = "picked_up"
	StatusRented        Status = "rented"
	StatusReturned      Status = "returned"
	StatusCompleted     Status = "completed"
	StatusCancelled     Status = "cancelled"
	StatusPriceDeclined Status = "price_declined"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusReadyToPickup, StatusPickedUp, StatusRented,
		StatusReturned, StatusCompleted, StatusCancelled, StatusPriceDeclined:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// PaymentStatus is always derived from the payment ledger, never set by callers.
type PaymentStatus string

const (
	PaymentUnpaid      PaymentStatus = "unpaid"
	PaymentPartial     PaymentStatus = "partial_payment"
	PaymentDownPayment PaymentStatus = "down-payment"
	PaymentPaid        PaymentStatus = "paid"
	PaymentFullyPaid   PaymentStatus = "fully_paid"
)

// Rank orders payment statuses from least to most paid. Unknown values rank below unpaid.
func (p PaymentStatus) Rank() int {
	switch p {
	case PaymentUnpaid:
		return 0
	case PaymentPartial:
		return 1
	case PaymentDownPayment:
		return 2
	case PaymentPaid, PaymentFullyPaid:
		return 3
	}
	return -1
}

type ApprovalStatus string

const (
	ApprovalPendingReview ApprovalStatus = "pending_review"
	ApprovalAccepted      ApprovalStatus = "accepted"
	ApprovalPriceDeclined ApprovalStatus = "price_declined"
)

type TransactionType string

const (
	TransactionPayment      TransactionType = "payment"
	TransactionDownPayment  TransactionType = "down_payment"
	TransactionFinalPayment TransactionType = "final_payment"
	// Refund and adjustment are recognised but no operation writes them yet.
	TransactionRefund     TransactionType = "refund"
	TransactionAdjustment TransactionType = "adjustment"
)

// CollectedTypes are the transaction types that count toward the amount paid on an item.
var CollectedTypes = []TransactionType{TransactionPayment, TransactionDownPayment, TransactionFinalPayment}

func (t TransactionType) Collected() bool {
	switch t {
	case TransactionPayment, TransactionDownPayment, TransactionFinalPayment:
		return true
	}
	return false
}

type ActorRole string

const (
	ActorSystem ActorRole = "system"
	ActorAdmin  ActorRole = "admin"
	ActorUser   ActorRole = "user"
)

func (r ActorRole) Valid() bool {
	return r == ActorSystem || r == ActorAdmin || r == ActorUser
}
