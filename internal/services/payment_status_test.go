package services

import (
	"tailor_shop/internal/models"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDownPaymentThresholdRoundsUpToCents(t *testing.T) {
	assert.True(t, dec("500").Equal(DownPaymentThreshold(dec("1000"))))
	assert.True(t, dec("50.00").Equal(DownPaymentThreshold(dec("99.99"))), DownPaymentThreshold(dec("99.99")).String())
	assert.True(t, dec("0.01").Equal(DownPaymentThreshold(dec("0.01"))))
	assert.True(t, dec("50.01").Equal(DownPaymentThreshold(dec("100.01"))))
}

func TestDerivePaymentStatus(t *testing.T) {
	tests := []struct {
		name        string
		serviceType models.ServiceType
		price       string
		paid        string
		want        models.PaymentStatus
	}{
		{"rental unpaid", models.ServiceRental, "1000", "0", models.PaymentUnpaid},
		{"rental partial", models.ServiceRental, "1000", "499.99", models.PaymentPartial},
		{"rental down payment at threshold", models.ServiceRental, "1000", "500", models.PaymentDownPayment},
		{"rental down payment above threshold", models.ServiceRental, "1000", "800", models.PaymentDownPayment},
		{"rental fully paid at price", models.ServiceRental, "1000", "1000", models.PaymentFullyPaid},
		{"repair unpaid", models.ServiceRepair, "200", "0", models.PaymentUnpaid},
		{"repair partial above half", models.ServiceRepair, "200", "150", models.PaymentPartial},
		{"repair paid at price", models.ServiceRepair, "200", "200", models.PaymentPaid},
		{"dry cleaning paid", models.ServiceDryCleaning, "500", "500", models.PaymentPaid},
		{"customization partial", models.ServiceCustomization, "900", "0.01", models.PaymentPartial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DerivePaymentStatus(tt.serviceType, dec(tt.price), dec(tt.paid)))
		})
	}
}

func TestDerivePaymentStatusIsMonotonic(t *testing.T) {
	price := dec("1000")
	for _, st := range []models.ServiceType{models.ServiceRental, models.ServiceRepair} {
		previous := models.PaymentUnpaid
		for paid := int64(0); paid <= 1000; paid += 25 {
			status := DerivePaymentStatus(st, price, decimal.NewFromInt(paid))
			assert.GreaterOrEqual(t, status.Rank(), previous.Rank(), "%s at %d", st, paid)
			previous = status
		}
	}
}

func TestRemainingBalanceNeverNegative(t *testing.T) {
	assert.True(t, dec("200").Equal(RemainingBalance(dec("1000"), dec("800"))))
	assert.True(t, decimal.Zero.Equal(RemainingBalance(dec("1000"), dec("1200"))))
}

func TestPlanAutomaticCharge(t *testing.T) {
	tests := []struct {
		name        string
		serviceType models.ServiceType
		status      models.Status
		price       string
		paid        string
		wantOK      bool
		wantType    models.TransactionType
		wantAmount  string
	}{
		{"rental rented charges down payment", models.ServiceRental, models.StatusRented, "1000", "0", true, models.TransactionDownPayment, "500"},
		{"rental rented tops up prepayment", models.ServiceRental, models.StatusRented, "1000", "200", true, models.TransactionDownPayment, "300"},
		{"rental rented after threshold charges nothing", models.ServiceRental, models.StatusRented, "1000", "600", true, models.TransactionDownPayment, "0"},
		{"rental returned charges balance", models.ServiceRental, models.StatusReturned, "1000", "500", true, models.TransactionFinalPayment, "500"},
		{"rental completed when fully paid", models.ServiceRental, models.StatusCompleted, "1000", "1000", true, models.TransactionFinalPayment, "0"},
		{"dry cleaning completed", models.ServiceDryCleaning, models.StatusCompleted, "500", "0", true, models.TransactionPayment, "500"},
		{"repair completed with partial", models.ServiceRepair, models.StatusCompleted, "300", "120", true, models.TransactionPayment, "180"},
		{"repair in progress", models.ServiceRepair, models.StatusInProgress, "300", "0", false, "", "0"},
		{"rental cancelled", models.ServiceRental, models.StatusCancelled, "1000", "0", false, "", "0"},
		{"repair rented is not a charge rule", models.ServiceRepair, models.StatusRented, "300", "0", false, "", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, ok := PlanAutomaticCharge(tt.serviceType, tt.status, dec(tt.price), dec(tt.paid))
			assert.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantType, plan.Type)
			assert.True(t, dec(tt.wantAmount).Equal(plan.Amount), "amount %s", plan.Amount)
		})
	}
}
