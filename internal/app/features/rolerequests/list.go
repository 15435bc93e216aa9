// internal/app/features/rolerequests/list.go
package rolerequests

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/innovhub/internal/app/features/errors"
	rolerequeststore "github.com/dalemusser/innovhub/internal/app/store/rolerequests"
	"github.com/dalemusser/innovhub/internal/app/system/authz"
	"github.com/dalemusser/innovhub/internal/app/system/timeouts"
	"github.com/dalemusser/innovhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

type listResponse struct {
	Requests []models.RoleRequest `json:"requests"`
}

// ServeMine handles GET /api/role-requests/mine.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Write(w, r, http.StatusUnauthorized, "error.unauthorized", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	reqs, err := rolerequeststore.New(h.DB).ListByUser(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list own role requests failed", err, "error.internal")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{Requests: reqs})
}

// ServeAdminList handles GET /api/admin/role-requests?status=&limit=.
func (h *Handler) ServeAdminList(w http.ResponseWriter, r *http.Request) {
	status := strings.ToLower(strings.TrimSpace(query.Get(r, "status")))
	if status != "" && !rolerequeststore.ValidStatus(status) {
		h.ErrLog.Write(w, r, http.StatusBadRequest, "error.invalid_status", nil)
		return
	}

	var limit int64
	if raw := query.Get(r, "limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			h.ErrLog.Write(w, r, http.StatusBadRequest, "error.invalid_request", nil)
			return
		}
		limit = min(n, MaxLimit)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	reqs, err := rolerequeststore.New(h.DB).List(ctx, rolerequeststore.Filter{Status: status, Limit: limit})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list role requests failed", err, "error.internal")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{Requests: reqs})
}
