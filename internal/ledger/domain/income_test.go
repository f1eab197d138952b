package ledger

import (
	"testing"

	leasing "rental-cloud/internal/leasing/domain"
)

func TestDeriveCategory(t *testing.T) {
	cases := []struct {
		paymentType leasing.PaymentType
		want        IncomeCategory
	}{
		{leasing.PaymentTypeRent, CategoryRent},
		{leasing.PaymentTypeAdvance, CategoryRent},
		{leasing.PaymentTypePrepayment, CategoryRent},
		{leasing.PaymentTypePenalty, CategoryOtherIncome},
		{leasing.PaymentTypeAdjustment, CategoryOtherIncome},
		{leasing.PaymentTypeOther, CategoryOtherIncome},
	}
	for _, tc := range cases {
		if got := DeriveCategory(tc.paymentType); got != tc.want {
			t.Errorf("DeriveCategory(%s) = %s, want %s", tc.paymentType, got, tc.want)
		}
	}
}
