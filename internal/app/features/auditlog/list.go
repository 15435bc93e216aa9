// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"slices"
	"strings"
	"time"

	uierrors "github.com/dalemusser/innovhub/internal/app/features/errors"
	"github.com/dalemusser/innovhub/internal/app/store/audit"
	"github.com/dalemusser/innovhub/internal/app/system/paging"
	"github.com/dalemusser/innovhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// ServeList handles GET /api/admin/audit with optional category, event_type,
// start_date, end_date (YYYY-MM-DD, UTC) and page filters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(query.Get(r, "category"))
	eventType := strings.TrimSpace(query.Get(r, "event_type"))
	startDate := strings.TrimSpace(query.Get(r, "start_date"))
	endDate := strings.TrimSpace(query.Get(r, "end_date"))

	if !validCategory(category) {
		h.ErrLog.Write(w, r, http.StatusBadRequest, "error.invalid_request", nil)
		return
	}
	if eventType != "" && !slices.Contains(eventTypesForCategory(category), eventType) {
		h.ErrLog.Write(w, r, http.StatusBadRequest, "error.invalid_request", nil)
		return
	}

	page := paging.ParsePage(r)

	filter := audit.QueryFilter{
		Category:  category,
		EventType: eventType,
		Limit:     paging.PageSize,
		Skip:      paging.Skip(page, paging.PageSize),
	}
	if startDate != "" {
		t, err := time.Parse(dateLayout, startDate)
		if err != nil {
			h.ErrLog.Write(w, r, http.StatusBadRequest, "error.invalid_request", nil)
			return
		}
		filter.Since = &t
	}
	if endDate != "" {
		t, err := time.Parse(dateLayout, endDate)
		if err != nil {
			h.ErrLog.Write(w, r, http.StatusBadRequest, "error.invalid_request", nil)
			return
		}
		endOfDay := t.Add(24*time.Hour - time.Millisecond)
		filter.Until = &endOfDay
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "query audit events failed", err, "error.internal")
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count audit events failed", err, "error.internal")
		return
	}

	// Batch fetch user names
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, e := range events {
		if e.UserID == nil {
			continue
		}
		if _, ok := seen[*e.UserID]; !ok {
			seen[*e.UserID] = struct{}{}
			ids = append(ids, *e.UserID)
		}
	}
	userNames := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) > 0 {
		users, err := h.Users.GetByIDs(ctx, ids)
		if err != nil {
			h.Log.Warn("failed to fetch user names for audit log", zap.Error(err))
		}
		for _, u := range users {
			userNames[u.ID] = u.FullName
		}
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			ID:            e.ID.Hex(),
			Timestamp:     e.Timestamp,
			Category:      e.Category,
			EventType:     e.EventType,
			IP:            e.IP,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		}
		if e.UserID != nil {
			item.UserID = e.UserID.Hex()
			item.UserName = userNames[*e.UserID]
		}
		items = append(items, item)
	}

	uierrors.WriteJSON(w, http.StatusOK, listResponse{
		Items:      items,
		Category:   category,
		EventType:  eventType,
		StartDate:  startDate,
		EndDate:    endDate,
		Categories: allCategories(),
		EventTypes: eventTypesForCategory(category),
		Result:     paging.Compute(page, paging.PageSize, total),
	})
}
