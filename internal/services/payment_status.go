package services

import (
	"tailor_shop/internal/models"

	"github.com/shopspring/decimal"
)

var downPaymentRatio = decimal.RequireFromString("0.5")

// DownPaymentThreshold is half the final price, rounded up to the cent.
func DownPaymentThreshold(finalPrice decimal.Decimal) decimal.Decimal {
	return finalPrice.Mul(downPaymentRatio).RoundCeil(2)
}

// DerivePaymentStatus computes the payment status from the ledger total alone.
// Reaching a threshold exactly counts as reaching it.
func DerivePaymentStatus(serviceType models.ServiceType, finalPrice, totalPaid decimal.Decimal) models.PaymentStatus {
	if serviceType == models.ServiceRental {
		switch {
		case totalPaid.GreaterThanOrEqual(finalPrice):
			return models.PaymentFullyPaid
		case totalPaid.GreaterThanOrEqual(DownPaymentThreshold(finalPrice)):
			return models.PaymentDownPayment
		case totalPaid.IsPositive():
			return models.PaymentPartial
		}
		return models.PaymentUnpaid
	}

	switch {
	case totalPaid.GreaterThanOrEqual(finalPrice):
		return models.PaymentPaid
	case totalPaid.IsPositive():
		return models.PaymentPartial
	}
	return models.PaymentUnpaid
}

// RemainingBalance never goes below zero.
func RemainingBalance(finalPrice, totalPaid decimal.Decimal) decimal.Decimal {
	remaining := finalPrice.Sub(totalPaid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// ChargePlan is the automatic charge a status transition calls for.
type ChargePlan struct {
	Type   models.TransactionType
	Target decimal.Decimal
	Amount decimal.Decimal
}

// PlanAutomaticCharge returns the charge owed when an item enters newStatus. ok is false
// when the transition carries no charge rule; Amount is zero when the target is already met.
func PlanAutomaticCharge(serviceType models.ServiceType, newStatus models.Status, finalPrice, totalPaid decimal.Decimal) (plan ChargePlan, ok bool) {
	switch {
	case serviceType == models.ServiceRental && newStatus == models.StatusRented:
		plan = ChargePlan{Type: models.TransactionDownPayment, Target: DownPaymentThreshold(finalPrice)}
	case serviceType == models.ServiceRental && (newStatus == models.StatusReturned || newStatus == models.StatusCompleted):
		plan = ChargePlan{Type: models.TransactionFinalPayment, Target: finalPrice}
	case serviceType != models.ServiceRental && newStatus == models.StatusCompleted:
		plan = ChargePlan{Type: models.TransactionPayment, Target: finalPrice}
	default:
		return ChargePlan{}, false
	}

	plan.Amount = RemainingBalance(plan.Target, totalPaid)
	return plan, true
}
