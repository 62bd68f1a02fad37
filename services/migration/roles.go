package migration

import "strings"

const (
	RoleAdmin          = "admin"
	RoleCoach          = "coach"
	RoleAssistantCoach = "assistant_coach"
	RoleManager        = "manager"
	RoleStaff          = "staff"
	RoleMember         = "member"
)

// first match wins, so "assistant coach" resolves before the bare
// "coach" rule gets a look.
var staffRoleRules = []struct {
	substr string
	role   string
}{
	{"head coach", RoleCoach},
	{"head-coach", RoleCoach},
	{"assistant", RoleAssistantCoach},
	{"coach", RoleCoach},
	{"manager", RoleManager},
	{"admin", RoleAdmin},
}

// MapStaffRole folds a free-form staff title from the source site into
// one of the fixed target roles. Unrecognized titles become generic
// staff, an absent title means the row was not a staff row at all and
// falls back to plain membership.
func MapStaffRole(title string) string {
	if strings.TrimSpace(title) == "" {
		return RoleMember
	}
	lowered := strings.ToLower(title)
	for _, rule := range staffRoleRules {
		if strings.Contains(lowered, rule.substr) {
			return rule.role
		}
	}
	return RoleStaff
}
