// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/innovhub/internal/app/store/audit"
	"github.com/dalemusser/innovhub/internal/app/system/paging"
)

// listItem is one audit event with the user's name resolved.
type listItem struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"event_type"`
	UserID        string            `json:"user_id,omitempty"`
	UserName      string            `json:"user_name,omitempty"`
	IP            string            `json:"ip"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

// listResponse is the JSON body for GET /api/admin/audit.
type listResponse struct {
	Items []listItem `json:"items"`

	// Filters echoed back
	Category  string `json:"category,omitempty"`
	EventType string `json:"event_type,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`

	// Filter options
	Categories []string `json:"categories"`
	EventTypes []string `json:"event_types"`

	paging.Result
}

// allCategories returns the available categories for filtering.
func allCategories() []string {
	return []string{audit.CategoryAuth, audit.CategoryActivity}
}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailed,
		audit.EventUserCreated,
		audit.EventLogout,
	}
	activityEvents := []string{
		audit.EventOnboardingCompleted,
		audit.EventOnboardingSkipped,
		audit.EventRoleRequested,
		audit.EventProfileUpdated,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryActivity:
		return activityEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(activityEvents))
		all = append(all, authEvents...)
		return append(all, activityEvents...)
	default:
		return nil
	}
}

func validCategory(c string) bool {
	return c == "" || c == audit.CategoryAuth || c == audit.CategoryActivity
}
