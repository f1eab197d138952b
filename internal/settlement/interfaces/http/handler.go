package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"rental-cloud/internal/audit"
	"rental-cloud/internal/auth"
	leasing "rental-cloud/internal/leasing/domain"
	settleapp "rental-cloud/internal/settlement/application"
)

// Handler serves the payment settlement endpoint.
type Handler struct {
	service     *settleapp.SettlementService
	auditLogger audit.Logger
	validate    *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(service *settleapp.SettlementService, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("settlement handler: nil service")
	}
	return &Handler{
		service:     service,
		auditLogger: auditLogger,
		validate:    validator.New(),
	}, nil
}

type settleRequest struct {
	PaidAt       string `json:"paid_at" validate:"required"`
	Method       string `json:"method" validate:"required"`
	PaymentType  string `json:"payment_type" validate:"required,oneof=RENT PREPAYMENT ADVANCE_PAYMENT PENALTY ADJUSTMENT OTHER"`
	TimingStatus string `json:"timing_status" validate:"required,oneof=ONTIME LATE ADVANCE"`
	Note         string `json:"note" validate:"omitempty,max=500"`
}

// ServeHTTP handles POST /api/v1/payments/{id}/settle.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/api/v1/payments/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/payments/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "settle" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	paymentID := parts[0]

	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	paidAt, err := time.Parse(time.RFC3339, req.PaidAt)
	if err != nil {
		http.Error(w, "paid_at must be RFC3339", http.StatusBadRequest)
		return
	}

	actorID := auth.UserIDFromContext(r.Context())
	result, err := h.service.Settle(r.Context(), paymentID, actorID, leasing.SettlementDetails{
		PaidAt:       paidAt.UTC(),
		Method:       req.Method,
		Type:         leasing.PaymentType(req.PaymentType),
		TimingStatus: leasing.TimingStatus(req.TimingStatus),
		Note:         req.Note,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
	h.logAudit(r, paymentID, result.IncomeRecordID, req)
}

func (h *Handler) logAudit(r *http.Request, paymentID, incomeRecordID string, req settleRequest) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(map[string]any{
		"method":           req.Method,
		"payment_type":     req.PaymentType,
		"timing_status":    req.TimingStatus,
		"income_record_id": incomeRecordID,
	})
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.UserIDFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "payment.settle",
		ResourceType: "payment",
		ResourceID:   paymentID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, leasing.ErrPaymentNotFound), errors.Is(err, leasing.ErrLeaseNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, leasing.ErrPaymentAlreadyPaid):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, leasing.ErrLeaseActorMismatch):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, leasing.ErrInvalidSettlement):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
