// Package persona maps a user's role assignments to the single persona that
// drives default routing and dashboard selection.
//
// A persona never grants permissions. Authorization is decided by role
// permissions, checked in authz and enforced again by the data layer.
package persona

import "strings"

// Persona is one of the closed set of persona tags.
type Persona string

const (
	Admin        Persona = "admin"
	Executive    Persona = "executive"
	Deputyship   Persona = "deputyship"
	Municipality Persona = "municipality"
	Provider     Persona = "provider"
	Expert       Persona = "expert"
	Researcher   Persona = "researcher"
	Citizen      Persona = "citizen"
	User         Persona = "user"
)

// All lists every persona in resolution priority order (highest first).
var All = []Persona{Admin, Executive, Deputyship, Municipality, Provider, Expert, Researcher, Citizen, User}

// Selectable lists the personas a user may pick during onboarding.
var Selectable = []Persona{Executive, Deputyship, Municipality, Provider, Expert, Researcher, Citizen}

var rank = func() map[Persona]int {
	m := make(map[Persona]int, len(All))
	for i, p := range All {
		m[p] = i
	}
	return m
}()

// Parse normalizes s and reports whether it names a known persona.
func Parse(s string) (Persona, bool) {
	p := Persona(strings.ToLower(strings.TrimSpace(s)))
	_, ok := rank[p]
	return p, ok
}

// IsSelectable reports whether p can be chosen in onboarding.
func IsSelectable(p Persona) bool {
	for _, s := range Selectable {
		if s == p {
			return true
		}
	}
	return false
}

// Assignment is one role held by the user, with the persona it maps to.
// Persona may be empty, in which case the role name itself is tried.
type Assignment struct {
	Role    string
	Persona string
}

// Resolve picks the active persona. Admins are always Admin; otherwise the
// highest-priority persona named by any assignment wins, and User is the
// fallback when nothing matches.
func Resolve(assignments []Assignment, isAdmin bool) Persona {
	if isAdmin {
		return Admin
	}
	best := User
	for _, a := range assignments {
		p, ok := Parse(a.Persona)
		if !ok {
			p, ok = Parse(a.Role)
		}
		if ok && rank[p] < rank[best] {
			best = p
		}
	}
	return best
}

// HomePage is the generic landing page used when a persona has no entry.
const HomePage = "/home"

var landing = map[Persona]string{
	Admin:        "/admin/dashboard",
	Executive:    "/executive/dashboard",
	Deputyship:   "/deputyship/dashboard",
	Municipality: "/municipality/dashboard",
	Provider:     "/provider/dashboard",
	Expert:       "/expert/dashboard",
	Researcher:   "/researcher/dashboard",
	Citizen:      "/citizen/dashboard",
}

// LandingPage returns the landing path for p, or HomePage.
func LandingPage(p Persona) string {
	if path, ok := landing[p]; ok {
		return path
	}
	return HomePage
}

// Active returns the persona that drives routing for the session. A persona
// resolved from roles always wins; a user with no role persona falls back to
// the persona they selected during onboarding, if it is selectable.
func Active(resolved Persona, selected string) Persona {
	if resolved != User {
		return resolved
	}
	if p, ok := Parse(selected); ok && IsSelectable(p) {
		return p
	}
	return User
}
