// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/innovhub/internal/app/system/auth"
	"github.com/dalemusser/innovhub/internal/app/system/persona"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subject is the capability set a gate is checked against.
type Subject struct {
	IsAdmin     bool
	Permissions []string
}

// Allows reports whether s passes a gate. An admin-only gate needs IsAdmin.
// A non-empty required list needs at least one held permission; admins pass
// every permission gate. A gate with neither is open.
func (s Subject) Allows(requireAdmin bool, required ...string) bool {
	if requireAdmin && !s.IsAdmin {
		return false
	}
	if len(required) == 0 || s.IsAdmin {
		return true
	}
	for _, want := range required {
		for _, have := range s.Permissions {
			if want == have {
				return true
			}
		}
	}
	return false
}

// SubjectFrom builds the Subject for the current request. Anonymous requests
// get the zero Subject, which only passes open gates.
func SubjectFrom(r *http.Request) Subject {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return Subject{}
	}
	return Subject{IsAdmin: u.IsAdmin, Permissions: u.Permissions}
}

// UserCtx returns the user's name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "", NilObjectID, false, so ok=true always means a valid ObjectID.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session: fail closed.
		return "", primitive.NilObjectID, false
	}
	return user.Name, userID, true
}

// IsAdmin reports whether the current request's user carries the admin flag.
func IsAdmin(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && u.IsAdmin
}

// HasPermission reports whether the current user holds perm. Admins hold all.
func HasPermission(r *http.Request, perm string) bool {
	return HasAnyPermission(r, perm)
}

// HasAnyPermission reports whether the current user holds any of perms.
// Returns false if no user is present.
func HasAnyPermission(r *http.Request, perms ...string) bool {
	if _, ok := auth.CurrentUser(r); !ok {
		return false
	}
	return SubjectFrom(r).Allows(false, perms...)
}

// Persona returns the active persona of the current user, or persona.User
// when no one is signed in. It selects dashboards and landing pages only.
func Persona(r *http.Request) persona.Persona {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return persona.User
	}
	resolved, ok := persona.Parse(u.Persona)
	if !ok {
		resolved = persona.User
	}
	return persona.Active(resolved, u.SelectedPersona)
}
