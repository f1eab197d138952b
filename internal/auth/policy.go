package auth

import (
	"net/http"
	"strings"
)

// Policy determines allowed roles by request.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a default policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth/RBAC.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// AllowedRoles resolves the roles allowed to make the request. Admin always
// passes regardless of the returned set.
func (p Policy) AllowedRoles(r *http.Request) ([]Role, bool) {
	if r == nil {
		return nil, false
	}
	path := r.URL.Path
	method := r.Method

	switch {
	case strings.HasPrefix(path, "/api/v1/leases/"):
		switch {
		case strings.HasSuffix(path, "/accept"), strings.HasSuffix(path, "/reject"):
			return []Role{RoleTenant}, true
		case strings.HasSuffix(path, "/cancel"), strings.HasSuffix(path, "/terminate"):
			return []Role{RoleLandlord}, true
		default:
			return []Role{RoleTenant, RoleLandlord}, true
		}
	case strings.HasPrefix(path, "/api/v1/payments/") && strings.HasSuffix(path, "/settle"):
		return []Role{RoleLandlord}, true
	case strings.HasPrefix(path, "/api/v1/tenants/") && strings.HasSuffix(path, "/behavior"):
		return []Role{RoleLandlord}, true
	case path == "/api/v1/dashboard/payments":
		return []Role{RoleLandlord}, true
	case path == "/api/v1/income/monthly":
		return []Role{RoleLandlord}, true
	case strings.HasPrefix(path, "/api/v1/exports/"):
		return []Role{RoleLandlord}, true
	case path == "/api/v1/reminders/run":
		return []Role{RoleAdmin}, true
	}

	if strings.HasPrefix(path, "/api/") {
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			return []Role{RoleTenant, RoleLandlord}, true
		}
		return []Role{RoleAdmin}, true
	}
	return nil, false
}
