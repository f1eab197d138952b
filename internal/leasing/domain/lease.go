package leasing

import "time"

// LeaseStatus enumerates the lease lifecycle.
type LeaseStatus string

const (
	LeaseStatusPending    LeaseStatus = "PENDING"
	LeaseStatusActive     LeaseStatus = "ACTIVE"
	LeaseStatusCancelled  LeaseStatus = "CANCELLED"
	LeaseStatusTerminated LeaseStatus = "TERMINATED"
	LeaseStatusCompleted  LeaseStatus = "COMPLETED"
)

// Lease is a rental agreement between a landlord and a tenant for one unit.
type Lease struct {
	ID         string
	LandlordID string
	TenantID   string
	PropertyID string
	UnitID     string

	Nickname        string
	StartDate       time.Time
	EndDate         *time.Time
	RentAmount      float64
	DueDay          int
	SecurityDeposit *float64

	Status    LeaseStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Terms extracts the schedule generator input.
func (l *Lease) Terms() ScheduleTerms {
	return ScheduleTerms{
		StartDate:  l.StartDate,
		EndDate:    l.EndDate,
		RentAmount: l.RentAmount,
		DueDay:     l.DueDay,
	}
}

// Accept moves a PENDING lease to ACTIVE.
func (l *Lease) Accept(now time.Time) error {
	if l.Status != LeaseStatusPending {
		return ErrLeaseNotPending
	}
	l.Status = LeaseStatusActive
	l.UpdatedAt = now
	return nil
}

// Reject moves a PENDING lease to CANCELLED.
func (l *Lease) Reject(now time.Time) error {
	if l.Status != LeaseStatusPending {
		return ErrLeaseNotPending
	}
	l.Status = LeaseStatusCancelled
	l.UpdatedAt = now
	return nil
}

// Terminate ends an ACTIVE lease early. The termination date backfills EndDate
// when the lease was open-ended. Terminal, cannot be reopened.
func (l *Lease) Terminate(now time.Time, terminatedOn time.Time) error {
	if l.Status != LeaseStatusActive {
		return ErrLeaseNotActive
	}
	l.Status = LeaseStatusTerminated
	if l.EndDate == nil {
		end := DateOf(terminatedOn)
		l.EndDate = &end
	}
	l.UpdatedAt = now
	return nil
}

// Complete marks an ACTIVE lease as naturally expired. Terminal.
func (l *Lease) Complete(now time.Time) error {
	if l.Status != LeaseStatusActive {
		return ErrLeaseNotActive
	}
	l.Status = LeaseStatusCompleted
	l.UpdatedAt = now
	return nil
}
