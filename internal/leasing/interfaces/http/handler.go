package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"rental-cloud/internal/audit"
	"rental-cloud/internal/auth"
	leaseapp "rental-cloud/internal/leasing/application"
	leasing "rental-cloud/internal/leasing/domain"
)

const dateLayout = "2006-01-02"

// Handler serves lease lifecycle endpoints.
type Handler struct {
	service     *leaseapp.LeaseService
	auditLogger audit.Logger
}

// NewHandler constructs a Handler.
func NewHandler(service *leaseapp.LeaseService, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("lease handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes lease requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/api/v1/leases/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/leases/")
	parts := strings.Split(path, "/")
	if len(parts) < 1 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	leaseID := parts[0]

	if len(parts) == 1 && r.Method == http.MethodGet {
		h.handleDetail(w, r, leaseID)
		return
	}
	if len(parts) == 2 && r.Method == http.MethodPatch {
		switch parts[1] {
		case "accept":
			h.handleAccept(w, r, leaseID)
			return
		case "reject":
			h.handleReject(w, r, leaseID)
			return
		case "cancel":
			h.handleCancel(w, r, leaseID)
			return
		case "terminate":
			h.handleTerminate(w, r, leaseID)
			return
		}
	}

	w.WriteHeader(http.StatusNotFound)
}

func (h *Handler) handleAccept(w http.ResponseWriter, r *http.Request, leaseID string) {
	actorID := auth.UserIDFromContext(r.Context())
	result, err := h.service.Accept(r.Context(), leaseID, actorID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
	h.logAudit(r, leaseID, "lease.accept", map[string]any{"payments_created": result.PaymentsCreated})
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request, leaseID string) {
	actorID := auth.UserIDFromContext(r.Context())
	if err := h.service.Reject(r.Context(), leaseID, actorID); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	h.logAudit(r, leaseID, "lease.reject", nil)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request, leaseID string) {
	actorID := auth.UserIDFromContext(r.Context())
	if err := h.service.Cancel(r.Context(), leaseID, actorID); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	h.logAudit(r, leaseID, "lease.cancel", nil)
}

func (h *Handler) handleTerminate(w http.ResponseWriter, r *http.Request, leaseID string) {
	actorID := auth.UserIDFromContext(r.Context())
	if err := h.service.Terminate(r.Context(), leaseID, actorID); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	h.logAudit(r, leaseID, "lease.terminate", nil)
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request, leaseID string) {
	lease, err := h.service.Get(r.Context(), leaseID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	actorID := auth.UserIDFromContext(r.Context())
	role := auth.RoleFromContext(r.Context())
	if actorID != "" && role != auth.RoleAdmin && actorID != lease.TenantID && actorID != lease.LandlordID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	payments, err := h.service.Payments(r.Context(), leaseID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(leaseDetail(lease, payments))
}

type leaseView struct {
	ID              string        `json:"id"`
	LandlordID      string        `json:"landlord_id"`
	TenantID        string        `json:"tenant_id"`
	PropertyID      string        `json:"property_id"`
	UnitID          string        `json:"unit_id"`
	Nickname        string        `json:"nickname,omitempty"`
	StartDate       string        `json:"start_date"`
	EndDate         *string       `json:"end_date"`
	RentAmount      float64       `json:"rent_amount"`
	DueDay          int           `json:"due_day"`
	SecurityDeposit *float64      `json:"security_deposit"`
	Status          string        `json:"status"`
	Payments        []paymentView `json:"payments"`
}

type paymentView struct {
	ID           string     `json:"id"`
	Amount       float64    `json:"amount"`
	DueDate      string     `json:"due_date"`
	Type         string     `json:"payment_type"`
	Status       string     `json:"status"`
	PaidAt       *time.Time `json:"paid_at"`
	Method       string     `json:"method,omitempty"`
	TimingStatus string     `json:"timing_status,omitempty"`
}

func leaseDetail(lease *leasing.Lease, payments []leasing.Payment) leaseView {
	view := leaseView{
		ID:              lease.ID,
		LandlordID:      lease.LandlordID,
		TenantID:        lease.TenantID,
		PropertyID:      lease.PropertyID,
		UnitID:          lease.UnitID,
		Nickname:        lease.Nickname,
		StartDate:       lease.StartDate.Format(dateLayout),
		RentAmount:      lease.RentAmount,
		DueDay:          lease.DueDay,
		SecurityDeposit: lease.SecurityDeposit,
		Status:          string(lease.Status),
		Payments:        make([]paymentView, 0, len(payments)),
	}
	if lease.EndDate != nil {
		end := lease.EndDate.Format(dateLayout)
		view.EndDate = &end
	}
	for _, p := range payments {
		view.Payments = append(view.Payments, paymentView{
			ID:           p.ID,
			Amount:       p.Amount,
			DueDate:      p.DueDate.Format(dateLayout),
			Type:         string(p.Type),
			Status:       string(p.Status),
			PaidAt:       p.PaidAt,
			Method:       p.Method,
			TimingStatus: string(p.TimingStatus),
		})
	}
	return view
}

func (h *Handler) logAudit(r *http.Request, leaseID, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	var payload json.RawMessage
	if meta != nil {
		payload, _ = json.Marshal(meta)
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.UserIDFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "lease",
		ResourceID:   leaseID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, leasing.ErrLeaseNotFound), errors.Is(err, leasing.ErrPaymentNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, leasing.ErrLeaseNotPending),
		errors.Is(err, leasing.ErrLeaseNotActive),
		errors.Is(err, leasing.ErrPaymentAlreadyPaid):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, leasing.ErrLeaseActorMismatch):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, leasing.ErrMissingStartDate),
		errors.Is(err, leasing.ErrInvalidRentAmount),
		errors.Is(err, leasing.ErrInvalidDueDay),
		errors.Is(err, leasing.ErrEndBeforeStart),
		errors.Is(err, leasing.ErrInvalidSettlement):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
