// internal/domain/models/role.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role is an assignable role definition. Users reference roles by Name.
type Role struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Persona     string             `bson:"persona,omitempty" json:"persona,omitempty"`
	Permissions []string           `bson:"permissions,omitempty" json:"permissions,omitempty"`
	IsAdmin     bool               `bson:"is_admin" json:"is_admin"`
}

// Permission names checked by navigation and handlers.
const (
	PermChallengesView    = "challenges_view"
	PermChallengesManage  = "challenges_manage"
	PermPilotsView        = "pilots_view"
	PermPilotsManage      = "pilots_manage"
	PermSolutionsView     = "solutions_view"
	PermSolutionsManage   = "solutions_manage"
	PermProgramsManage    = "programs_manage"
	PermEvaluationsReview = "evaluations_review"
	PermResearchView      = "research_view"
	PermReportsView       = "reports_view"
	PermMunicipalityAdmin = "municipality_admin"
	PermExecutiveView     = "executive_view"
	PermRoleRequestsView  = "role_requests_view"
)

// DefaultRoles is the role catalog seeded at startup when missing.
var DefaultRoles = []Role{
	{Name: "admin", Persona: "admin", IsAdmin: true},
	{Name: "executive_leadership", Persona: "executive", Permissions: []string{
		PermExecutiveView, PermReportsView, PermChallengesView, PermPilotsView, PermSolutionsView,
	}},
	{Name: "deputyship_officer", Persona: "deputyship", Permissions: []string{
		PermChallengesView, PermChallengesManage, PermPilotsView, PermProgramsManage, PermReportsView,
	}},
	{Name: "municipality_admin", Persona: "municipality", Permissions: []string{
		PermMunicipalityAdmin, PermChallengesView, PermChallengesManage, PermPilotsView, PermPilotsManage,
	}},
	{Name: "municipality_staff", Persona: "municipality", Permissions: []string{
		PermChallengesView, PermPilotsView,
	}},
	{Name: "solution_provider", Persona: "provider", Permissions: []string{
		PermSolutionsView, PermSolutionsManage, PermChallengesView,
	}},
	{Name: "domain_expert", Persona: "expert", Permissions: []string{
		PermEvaluationsReview, PermChallengesView, PermSolutionsView,
	}},
	{Name: "researcher", Persona: "researcher", Permissions: []string{
		PermResearchView, PermChallengesView,
	}},
	{Name: "citizen", Persona: "citizen"},
}
