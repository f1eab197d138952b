package leasing

import "time"

// Grace window for the gap prepayment, in calendar days after lease start.
const prepaymentGraceDays = 3

// ScheduleTerms are the inputs of the payment schedule generator.
type ScheduleTerms struct {
	StartDate  time.Time
	EndDate    *time.Time
	RentAmount float64
	DueDay     int
}

// Validate rejects unusable terms before anything is persisted.
func (t ScheduleTerms) Validate() error {
	if t.StartDate.IsZero() {
		return ErrMissingStartDate
	}
	if t.RentAmount <= 0 {
		return ErrInvalidRentAmount
	}
	if t.DueDay < 1 || t.DueDay > 31 {
		return ErrInvalidDueDay
	}
	if t.EndDate != nil && DateOf(*t.EndDate).Before(DateOf(t.StartDate)) {
		return ErrEndBeforeStart
	}
	return nil
}

// ScheduledPayment is one obligation produced by the generator.
type ScheduledPayment struct {
	Type    PaymentType
	Amount  float64
	DueDate time.Time
}

// FirstDueDate resolves the earliest date on or after start whose day-of-month
// equals dueDay, rolling forward one month when dueDay already passed in the
// start month. dueDay beyond the month length clamps to the month's last day.
func FirstDueDate(start time.Time, dueDay int) time.Time {
	start = DateOf(start)
	candidate := MonthDay(start.Year(), start.Month(), 0, dueDay)
	if candidate.Before(start) {
		candidate = MonthDay(start.Year(), start.Month(), 1, dueDay)
	}
	return candidate
}

// BuildSchedule deterministically expands lease terms into the ordered list of
// obligations to insert alongside the ACTIVE transition.
//
// When the first due date falls after the start date, the partial period in
// between is covered by a single zero-amount PREPAYMENT due three days after
// start. The amount is unknown at generation time and is entered by the
// landlord at settlement.
//
// Open-ended leases get only the first occurrence; later occurrences are the
// job of a separate recurring process.
func BuildSchedule(terms ScheduleTerms) ([]ScheduledPayment, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	start := DateOf(terms.StartDate)
	firstDue := FirstDueDate(start, terms.DueDay)

	var schedule []ScheduledPayment
	if firstDue.After(start) {
		schedule = append(schedule, ScheduledPayment{
			Type:    PaymentTypePrepayment,
			Amount:  0,
			DueDate: AddDays(start, prepaymentGraceDays),
		})
	}

	if terms.EndDate == nil {
		schedule = append(schedule, ScheduledPayment{
			Type:    PaymentTypeRent,
			Amount:  terms.RentAmount,
			DueDate: firstDue,
		})
		return schedule, nil
	}

	// Occurrences advance one anchor month at a time from the first due
	// month, re-clamping each month so dueDay=31 lands on Feb 28 then Mar 31.
	end := DateOf(*terms.EndDate)
	for i := 0; ; i++ {
		occurrence := MonthDay(firstDue.Year(), firstDue.Month(), i, terms.DueDay)
		if occurrence.After(end) {
			break
		}
		schedule = append(schedule, ScheduledPayment{
			Type:    PaymentTypeRent,
			Amount:  terms.RentAmount,
			DueDate: occurrence,
		})
	}
	return schedule, nil
}
