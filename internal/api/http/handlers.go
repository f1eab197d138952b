package apihttp

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"rental-cloud/internal/auth"
	ledger "rental-cloud/internal/ledger/domain"
	ledgerif "rental-cloud/internal/ledger/interfaces"
	leasing "rental-cloud/internal/leasing/domain"
	"rental-cloud/internal/observability/metrics"
)

const dateLayout = "2006-01-02"

// dashboardLimit caps each dashboard bucket.
const dashboardLimit = 4

// upcomingHorizonDays bounds the upcoming bucket's lookahead.
const upcomingHorizonDays = 7

// DashboardHandler serves the landlord payments dashboard: the next few
// overdue and upcoming obligations across all of the landlord's leases.
type DashboardHandler struct {
	db       *sql.DB
	calendar leasing.Calendar
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(db *sql.DB, calendar leasing.Calendar) *DashboardHandler {
	return &DashboardHandler{db: db, calendar: calendar}
}

type dashboardPayment struct {
	PaymentID  string  `json:"payment_id"`
	LeaseID    string  `json:"lease_id"`
	Nickname   string  `json:"nickname,omitempty"`
	TenantID   string  `json:"tenant_id"`
	PropertyID string  `json:"property_id"`
	UnitID     string  `json:"unit_id"`
	Amount     float64 `json:"amount"`
	DueDate    string  `json:"due_date"`
	Type       string  `json:"payment_type"`
}

// ServeHTTP handles GET /api/v1/dashboard/payments.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.db == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	landlordID := auth.UserIDFromContext(r.Context())
	if landlordID == "" {
		landlordID = r.URL.Query().Get("landlord_id")
	}
	if landlordID == "" {
		http.Error(w, "landlord_id is required", http.StatusBadRequest)
		return
	}
	today := h.calendar.Today()

	overdue, err := h.queryBucket(r.Context(), landlordID, `p.due_date < $2`, "p.due_date ASC", today)
	if err != nil {
		http.Error(w, "query dashboard error", http.StatusInternalServerError)
		return
	}
	horizon := leasing.AddDays(today, upcomingHorizonDays)
	upcoming, err := h.queryBucket(r.Context(), landlordID, `p.due_date >= $2 AND p.due_date <= $3`, "p.due_date ASC", today, horizon)
	if err != nil {
		http.Error(w, "query dashboard error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"overdue":  overdue,
		"upcoming": upcoming,
	})
}

func (h *DashboardHandler) queryBucket(ctx context.Context, landlordID, predicate, order string, bounds ...any) ([]dashboardPayment, error) {
	args := append([]any{landlordID}, bounds...)
	rows, err := h.db.QueryContext(ctx, `
SELECT p.id, p.lease_id, l.nickname, l.tenant_id, l.property_id, l.unit_id,
	p.amount, p.due_date, p.payment_type
FROM payments p
JOIN leases l ON l.id = p.lease_id
WHERE l.landlord_id = $1
	AND l.status = '`+string(leasing.LeaseStatusActive)+`'
	AND p.status = '`+string(leasing.PaymentStatusPending)+`'
	AND `+predicate+`
ORDER BY `+order+`
LIMIT `+strconv.Itoa(dashboardLimit), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]dashboardPayment, 0, dashboardLimit)
	for rows.Next() {
		var row dashboardPayment
		var nickname sql.NullString
		var dueDate time.Time
		if err := rows.Scan(
			&row.PaymentID,
			&row.LeaseID,
			&nickname,
			&row.TenantID,
			&row.PropertyID,
			&row.UnitID,
			&row.Amount,
			&dueDate,
			&row.Type,
		); err != nil {
			return nil, err
		}
		if nickname.Valid {
			row.Nickname = nickname.String
		}
		row.DueDate = leasing.DateOf(dueDate).Format(dateLayout)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// IncomeLister provides ledger reads for income endpoints.
type IncomeLister interface {
	MonthlyTotals(ctx context.Context, landlordID string, from, to time.Time) ([]ledger.MonthlyIncome, error)
	ListByLandlord(ctx context.Context, landlordID string, from, to time.Time) ([]ledger.IncomeRecord, error)
}

// MonthlyIncomeHandler serves the month-by-category income rollup.
type MonthlyIncomeHandler struct {
	incomes IncomeLister
}

// NewMonthlyIncomeHandler constructs a MonthlyIncomeHandler.
func NewMonthlyIncomeHandler(incomes IncomeLister) *MonthlyIncomeHandler {
	return &MonthlyIncomeHandler{incomes: incomes}
}

// ServeHTTP handles GET /api/v1/income/monthly.
func (h *MonthlyIncomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.incomes == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	landlordID, from, to, err := incomeParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := h.incomes.MonthlyTotals(r.Context(), landlordID, from, to)
	if err != nil {
		http.Error(w, "query income error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

// IncomeExportHandler serves CSV and XLSX income exports.
type IncomeExportHandler struct {
	incomes IncomeLister
	format  string
}

// NewIncomeExportHandler constructs an export handler for "csv" or "xlsx".
func NewIncomeExportHandler(incomes IncomeLister, format string) *IncomeExportHandler {
	return &IncomeExportHandler{incomes: incomes, format: format}
}

// ServeHTTP handles GET /api/v1/exports/income.{csv,xlsx}.
func (h *IncomeExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.incomes == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	landlordID, from, to, err := incomeParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := h.incomes.ListByLandlord(r.Context(), landlordID, from, to)
	if err != nil {
		metrics.ObserveIncomeExport(h.format, err)
		http.Error(w, "query income error", http.StatusInternalServerError)
		return
	}

	var data []byte
	switch h.format {
	case "xlsx":
		monthly, err := h.incomes.MonthlyTotals(r.Context(), landlordID, from, to)
		if err != nil {
			metrics.ObserveIncomeExport(h.format, err)
			http.Error(w, "query income error", http.StatusInternalServerError)
			return
		}
		data, err = ledgerif.BuildIncomeXLSX(records, monthly)
		if err != nil {
			metrics.ObserveIncomeExport(h.format, err)
			http.Error(w, "build export error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="income.xlsx"`)
	default:
		data, err = ledgerif.BuildIncomeCSV(records)
		if err != nil {
			metrics.ObserveIncomeExport(h.format, err)
			http.Error(w, "build export error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="income.csv"`)
	}
	metrics.ObserveIncomeExport(h.format, nil)
	_, _ = w.Write(data)
}

func incomeParams(r *http.Request) (landlordID string, from, to time.Time, err error) {
	landlordID = auth.UserIDFromContext(r.Context())
	if landlordID == "" {
		landlordID = r.URL.Query().Get("landlord_id")
	}
	if landlordID == "" {
		return "", time.Time{}, time.Time{}, errors.New("landlord_id is required")
	}
	from, err = parseDateQuery(r, "from")
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	to, err = parseDateQuery(r, "to")
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	if !to.After(from) {
		return "", time.Time{}, time.Time{}, errors.New("to must be after from")
	}
	return landlordID, from, to, nil
}

func parseDateQuery(r *http.Request, key string) (time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return time.Time{}, errors.New(key + " is required")
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, errors.New(key + " must be YYYY-MM-DD")
	}
	return parsed.UTC(), nil
}
