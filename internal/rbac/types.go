package rbac

import (
	"fmt"
	"strings"
)

// Role is one of a closed set: admin, user or manager:<department>.
type Role string

// Department scopes a manager role.
type Department string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"

	DepartmentSales     Department = "sales"
	DepartmentFinance   Department = "finance"
	DepartmentMarketing Department = "marketing"

	managerRolePrefix = "manager:"
)

// Departments lists every department in a fixed order. Resolution order of
// manager cookies follows it.
var Departments = []Department{DepartmentSales, DepartmentFinance, DepartmentMarketing}

// Principal is the identity resolved for a request.
type Principal struct {
	ID   string
	Role Role
}

// ManagerRole builds the manager:<department> role.
func ManagerRole(d Department) Role {
	return Role(managerRolePrefix + string(d))
}

// ManagerRoles returns the manager role of every department.
func ManagerRoles() []Role {
	roles := make([]Role, 0, len(Departments))
	for _, d := range Departments {
		roles = append(roles, ManagerRole(d))
	}
	return roles
}

// ParseDepartment accepts a bare department name ("sales").
func ParseDepartment(s string) (Department, error) {
	d := Department(strings.ToLower(strings.TrimSpace(s)))
	if d.Valid() {
		return d, nil
	}
	return "", fmt.Errorf(errUnknownDepartmentFmt, ErrInvalidRole, s)
}

// Valid reports whether d is a known department.
func (d Department) Valid() bool {
	for _, known := range Departments {
		if d == known {
			return true
		}
	}
	return false
}

// ParseRole validates s against the closed role set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if r.Valid() {
		return r, nil
	}
	return "", fmt.Errorf(errUnknownRoleFmt, ErrInvalidRole, s)
}

// ParseManagerRole accepts "manager:<dept>" or a bare "<dept>" and returns the
// canonical manager role.
func ParseManagerRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	if r := Role(s); r.IsManager() {
		return r, nil
	}
	d, err := ParseDepartment(s)
	if err != nil {
		return "", err
	}
	return ManagerRole(d), nil
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser || r.IsManager()
}

// IsManager reports whether r is manager:<dept> for a known department.
func (r Role) IsManager() bool {
	_, ok := r.Department()
	return ok
}

// Department returns the department of a manager role.
func (r Role) Department() (Department, bool) {
	rest, found := strings.CutPrefix(string(r), managerRolePrefix)
	if !found {
		return "", false
	}
	d := Department(rest)
	return d, d.Valid()
}

func (r Role) String() string {
	return string(r)
}
