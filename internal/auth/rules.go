package auth

import (
	"strings"

	"storefront/internal/rbac"
)

const (
	PolicyAdmin   = "admin"
	PolicyProfile = "profile"
	PolicySession = "session"

	AdminLoginPath   = "/admin/auth"
	ManagerLoginPath = "/manager/login"
	UserLoginPath    = "/login"
)

// PolicyManager names the policy for one department's manager area.
func PolicyManager(d rbac.Department) string {
	return string(rbac.ManagerRole(d))
}

// SessionPolicy accepts every identity the service issues, on any carrier a
// browser or API client may use.
func SessionPolicy() Policy {
	return Policy{
		Name: PolicySession,
		Accept: Acceptance{
			Cookie(SchemeAdmin),
			Bearer(SchemeAdmin),
			ManagerCookie(),
			Bearer(SchemeManager),
			Cookie(SchemeUser),
			Bearer(SchemeUser),
		},
		Allowed: append([]rbac.Role{rbac.RoleUser}, rbac.ManagerRoles()...),
	}
}

// Policy pairs the sources an entry point accepts with the roles it admits.
type Policy struct {
	Name    string
	Accept  Acceptance
	Allowed []rbac.Role
}

// With returns a copy of p that also accepts the given sources.
func (p Policy) With(sources ...Source) Policy {
	accept := make(Acceptance, 0, len(p.Accept)+len(sources))
	accept = append(accept, p.Accept...)
	accept = append(accept, sources...)
	return Policy{Name: p.Name, Accept: accept, Allowed: p.Allowed}
}

// RouteRule protects a page prefix.
type RouteRule struct {
	Prefix    string
	Exempt    []string
	Policy    Policy
	LoginPath string
}

// Matches reports whether path falls under the rule and is not exempt.
func (r RouteRule) Matches(path string) bool {
	if !underPrefix(path, r.Prefix) {
		return false
	}
	for _, e := range r.Exempt {
		if underPrefix(path, e) {
			return false
		}
	}
	return true
}

func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// RuleTable is the single list of protected areas used by page and API
// guards alike.
type RuleTable struct {
	rules    []RouteRule
	policies map[string]Policy
}

func NewRuleTable(rules ...RouteRule) *RuleTable {
	t := &RuleTable{policies: make(map[string]Policy, len(rules))}
	for _, r := range rules {
		t.rules = append(t.rules, r)
		t.policies[r.Policy.Name] = r.Policy
	}
	return t
}

// DefaultRules protects /admin, each /manager/<dept> area and /profile.
func DefaultRules() *RuleTable {
	rules := []RouteRule{{
		Prefix: "/admin",
		Exempt: []string{AdminLoginPath, "/admin/register"},
		Policy: Policy{
			Name:    PolicyAdmin,
			Accept:  Acceptance{Cookie(SchemeAdmin)},
			Allowed: []rbac.Role{rbac.RoleAdmin},
		},
		LoginPath: AdminLoginPath,
	}}

	for _, d := range rbac.Departments {
		prefix := "/manager/" + string(d)
		rules = append(rules, RouteRule{
			Prefix: prefix,
			Exempt: []string{prefix + "/login"},
			Policy: Policy{
				Name:    PolicyManager(d),
				// All manager cookies, own department first: another department's
				// manager is forbidden, not unauthenticated.
				Accept:  Acceptance{Cookie(SchemeAdmin), ManagerCookie(d), ManagerCookie()},
				Allowed: []rbac.Role{rbac.ManagerRole(d)},
			},
			LoginPath: ManagerLoginPath,
		})
	}

	rules = append(rules, RouteRule{
		Prefix: "/profile",
		Policy: Policy{
			Name:    PolicyProfile,
			Accept:  Acceptance{Cookie(SchemeUser)},
			Allowed: []rbac.Role{rbac.RoleUser},
		},
		LoginPath: UserLoginPath,
	})

	return NewRuleTable(rules...)
}

// Match returns the first rule covering path.
func (t *RuleTable) Match(path string) (RouteRule, bool) {
	for _, r := range t.rules {
		if r.Matches(path) {
			return r, true
		}
	}
	return RouteRule{}, false
}

// Policy looks up a named policy.
func (t *RuleTable) Policy(name string) (Policy, bool) {
	p, ok := t.policies[name]
	return p, ok
}

func (t *RuleTable) Rules() []RouteRule {
	return t.rules
}
