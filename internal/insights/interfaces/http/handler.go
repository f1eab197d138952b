package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"rental-cloud/internal/auth"
	insightsapp "rental-cloud/internal/insights/application"
)

// Handler serves tenant behavioral metrics.
type Handler struct {
	service *insightsapp.BehaviorService
	leases  insightsapp.LeaseGetter
}

// NewHandler constructs a Handler.
func NewHandler(service *insightsapp.BehaviorService, leases insightsapp.LeaseGetter) (*Handler, error) {
	if service == nil {
		return nil, errors.New("insights handler: nil service")
	}
	if leases == nil {
		return nil, errors.New("insights handler: nil lease getter")
	}
	return &Handler{service: service, leases: leases}, nil
}

// ServeHTTP handles GET /api/v1/tenants/{id}/behavior?lease_id={leaseID}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/api/v1/tenants/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/tenants/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "behavior" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	tenantID := parts[0]
	leaseID := r.URL.Query().Get("lease_id")
	if leaseID == "" {
		http.Error(w, "lease_id is required", http.StatusBadRequest)
		return
	}

	lease, err := h.leases.Get(r.Context(), leaseID)
	if err != nil || lease == nil {
		http.Error(w, "lease not found", http.StatusNotFound)
		return
	}
	if lease.TenantID != tenantID {
		http.Error(w, "lease not found", http.StatusNotFound)
		return
	}
	actorID := auth.UserIDFromContext(r.Context())
	role := auth.RoleFromContext(r.Context())
	if actorID != "" && role != auth.RoleAdmin && actorID != lease.LandlordID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	result := h.service.ForLease(r.Context(), leaseID)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}
