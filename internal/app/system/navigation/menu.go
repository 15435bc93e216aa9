package navigation

import (
	"github.com/dalemusser/innovhub/internal/app/system/authz"
	"github.com/dalemusser/innovhub/internal/app/system/locale"
	"github.com/dalemusser/innovhub/internal/domain/models"
)

// Gate restricts visibility of a node. The zero Gate is open.
type Gate struct {
	RequireAdmin        bool     `json:"require_admin,omitempty"`
	RequiredPermissions []string `json:"required_permissions,omitempty"`
}

func (g Gate) allows(s authz.Subject) bool {
	return s.Allows(g.RequireAdmin, g.RequiredPermissions...)
}

// Item is a leaf link.
type Item struct {
	ID       string
	LabelKey string
	Path     string
	Icon     string
	Gate
}

// Subsection groups items under a section.
type Subsection struct {
	ID       string
	LabelKey string
	Gate
	Items []Item
}

// Section is a top-level menu group. It may hold items directly, subsections,
// or both.
type Section struct {
	ID       string
	LabelKey string
	Icon     string
	Gate
	Items       []Item
	Subsections []Subsection
}

// Menu is the ordered list of sections.
type Menu []Section

// Filter returns the part of m visible to s. A section that fails its gate is
// dropped with everything under it. Subsections and items are filtered
// independently; a subsection whose items are all filtered out is kept with
// an empty item list. m is not modified.
func Filter(m Menu, s authz.Subject) Menu {
	out := make(Menu, 0, len(m))
	for _, sec := range m {
		if !sec.allows(s) {
			continue
		}
		kept := Section{ID: sec.ID, LabelKey: sec.LabelKey, Icon: sec.Icon, Gate: sec.Gate}
		kept.Items = filterItems(sec.Items, s)
		for _, sub := range sec.Subsections {
			if !sub.allows(s) {
				continue
			}
			kept.Subsections = append(kept.Subsections, Subsection{
				ID:       sub.ID,
				LabelKey: sub.LabelKey,
				Gate:     sub.Gate,
				Items:    filterItems(sub.Items, s),
			})
		}
		out = append(out, kept)
	}
	return out
}

func filterItems(items []Item, s authz.Subject) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.allows(s) {
			out = append(out, it)
		}
	}
	return out
}

/*─────────────────────────────────────────────────────────────────────────────*
| View model                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

type ItemView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Path  string `json:"path"`
	Icon  string `json:"icon,omitempty"`
}

type SubsectionView struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Items []ItemView `json:"items"`
}

type SectionView struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Icon        string           `json:"icon,omitempty"`
	Items       []ItemView       `json:"items"`
	Subsections []SubsectionView `json:"subsections"`
}

// Localize renders m with labels translated into lang.
func Localize(m Menu, tr locale.Translator, lang string) []SectionView {
	out := make([]SectionView, 0, len(m))
	for _, sec := range m {
		v := SectionView{
			ID:          sec.ID,
			Label:       tr.Translate(lang, sec.LabelKey),
			Icon:        sec.Icon,
			Items:       localizeItems(sec.Items, tr, lang),
			Subsections: make([]SubsectionView, 0, len(sec.Subsections)),
		}
		for _, sub := range sec.Subsections {
			v.Subsections = append(v.Subsections, SubsectionView{
				ID:    sub.ID,
				Label: tr.Translate(lang, sub.LabelKey),
				Items: localizeItems(sub.Items, tr, lang),
			})
		}
		out = append(out, v)
	}
	return out
}

func localizeItems(items []Item, tr locale.Translator, lang string) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		out = append(out, ItemView{ID: it.ID, Label: tr.Translate(lang, it.LabelKey), Path: it.Path, Icon: it.Icon})
	}
	return out
}

/*─────────────────────────────────────────────────────────────────────────────*
| Menu definition                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func perms(p ...string) Gate { return Gate{RequiredPermissions: p} }

var adminOnly = Gate{RequireAdmin: true}

// DefaultMenu is the application's navigation tree.
var DefaultMenu = Menu{
	{
		ID: "workspace", LabelKey: "nav.section.workspace", Icon: "home",
		Items: []Item{
			{ID: "dashboard", LabelKey: "nav.dashboard", Path: "/dashboard", Icon: "layout-dashboard"},
			{ID: "profile", LabelKey: "nav.profile", Path: "/profile", Icon: "user"},
		},
	},
	{
		ID: "innovation", LabelKey: "nav.section.innovation", Icon: "lightbulb",
		Gate: perms(models.PermChallengesView, models.PermPilotsView, models.PermSolutionsView),
		Subsections: []Subsection{
			{
				ID: "challenges", LabelKey: "nav.challenges", Gate: perms(models.PermChallengesView),
				Items: []Item{
					{ID: "challenges-all", LabelKey: "nav.challenges.all", Path: "/challenges"},
					{ID: "challenges-new", LabelKey: "nav.challenges.new", Path: "/challenges/new", Gate: perms(models.PermChallengesManage)},
				},
			},
			{
				ID: "pilots", LabelKey: "nav.pilots", Gate: perms(models.PermPilotsView),
				Items: []Item{
					{ID: "pilots-all", LabelKey: "nav.pilots.all", Path: "/pilots"},
					{ID: "pilots-manage", LabelKey: "nav.pilots.manage", Path: "/pilots/manage", Gate: perms(models.PermPilotsManage)},
				},
			},
			{
				ID: "solutions", LabelKey: "nav.solutions",
				Items: []Item{
					{ID: "solutions-browse", LabelKey: "nav.solutions.browse", Path: "/solutions", Gate: perms(models.PermSolutionsView)},
					{ID: "solutions-mine", LabelKey: "nav.solutions.mine", Path: "/solutions/mine", Gate: perms(models.PermSolutionsManage)},
				},
			},
		},
	},
	{
		ID: "evaluation", LabelKey: "nav.section.evaluation", Icon: "clipboard-check",
		Gate: perms(models.PermEvaluationsReview, models.PermResearchView),
		Items: []Item{
			{ID: "evaluations", LabelKey: "nav.evaluations", Path: "/evaluations", Gate: perms(models.PermEvaluationsReview)},
			{ID: "research", LabelKey: "nav.research", Path: "/research", Gate: perms(models.PermResearchView)},
		},
	},
	{
		ID: "leadership", LabelKey: "nav.section.leadership", Icon: "trending-up",
		Gate: perms(models.PermExecutiveView, models.PermReportsView, models.PermProgramsManage),
		Items: []Item{
			{ID: "executive", LabelKey: "nav.executive", Path: "/executive/overview", Gate: perms(models.PermExecutiveView)},
			{ID: "reports", LabelKey: "nav.reports", Path: "/reports", Gate: perms(models.PermReportsView)},
			{ID: "programs", LabelKey: "nav.programs", Path: "/programs", Gate: perms(models.PermProgramsManage)},
		},
	},
	{
		ID: "municipality", LabelKey: "nav.section.municipality", Icon: "building",
		Gate: perms(models.PermMunicipalityAdmin),
		Items: []Item{
			{ID: "municipality-settings", LabelKey: "nav.municipality.settings", Path: "/municipality/settings"},
		},
	},
	{
		ID: "admin", LabelKey: "nav.section.admin", Icon: "shield",
		Gate: adminOnly,
		Subsections: []Subsection{
			{
				ID: "access", LabelKey: "nav.admin.access",
				Items: []Item{
					{ID: "admin-users", LabelKey: "nav.admin.users", Path: "/admin/users"},
					{ID: "admin-role-requests", LabelKey: "nav.admin.role_requests", Path: "/admin/role-requests"},
					{ID: "admin-roles", LabelKey: "nav.admin.roles", Path: "/admin/roles"},
				},
			},
			{
				ID: "system", LabelKey: "nav.admin.system",
				Items: []Item{
					{ID: "admin-audit", LabelKey: "nav.admin.audit", Path: "/admin/audit"},
				},
			},
		},
	},
}
