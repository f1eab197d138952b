package ledger

import (
	"time"

	leasing "rental-cloud/internal/leasing/domain"
)

// IncomeCategory buckets ledger entries for reporting.
type IncomeCategory string

const (
	CategoryRent        IncomeCategory = "RENT"
	CategoryOtherIncome IncomeCategory = "OTHER_INCOME"
)

// DeriveCategory maps a payment type to its ledger category. Rent-like
// obligations roll up under RENT, everything else is other income.
func DeriveCategory(paymentType leasing.PaymentType) IncomeCategory {
	switch paymentType {
	case leasing.PaymentTypeRent, leasing.PaymentTypeAdvance, leasing.PaymentTypePrepayment:
		return CategoryRent
	default:
		return CategoryOtherIncome
	}
}

// IncomeRecord is one ledger entry created when a payment settles.
type IncomeRecord struct {
	ID         string
	LandlordID string
	PropertyID string
	UnitID     string
	LeaseID    string
	PaymentID  string

	Category    IncomeCategory
	Amount      float64
	Description string
	ReceivedOn  time.Time

	CreatedAt time.Time
}

// MonthlyIncome is one month-by-category rollup row.
type MonthlyIncome struct {
	Month    time.Time      `json:"month"`
	Category IncomeCategory `json:"category"`
	Total    float64        `json:"total"`
	Count    int            `json:"count"`
}
