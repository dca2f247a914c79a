package roles

import (
	internal_errors "github.com/careertodo/platform/internal"
)

// ProjectRole identifies a role a member can hold inside a project.
type ProjectRole string

const (
	RoleProjectLead       ProjectRole = "project_lead"
	RoleCoLead            ProjectRole = "co_lead"
	RoleDepartmentHead    ProjectRole = "department_head"
	RoleTeamLead          ProjectRole = "team_lead"
	RoleMentor            ProjectRole = "mentor"
	RoleSeniorContributor ProjectRole = "senior_contributor"
	RoleContributor       ProjectRole = "contributor"
	RoleJuniorContributor ProjectRole = "junior_contributor"
	RoleTechLead          ProjectRole = "tech_lead"
	RoleDesignLead        ProjectRole = "design_lead"
	RoleMarketingLead     ProjectRole = "marketing_lead"
	RoleFinanceLead       ProjectRole = "finance_lead"
)

// Action is a capability a role may exercise on project resources.
type Action string

const (
	ActionManage  Action = "manage"
	ActionEdit    Action = "edit"
	ActionCreate  Action = "create"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
)

// AllRoles lists every project role in a stable display order.
var AllRoles = []ProjectRole{
	RoleProjectLead,
	RoleCoLead,
	RoleDepartmentHead,
	RoleTeamLead,
	RoleMentor,
	RoleSeniorContributor,
	RoleContributor,
	RoleJuniorContributor,
	RoleTechLead,
	RoleDesignLead,
	RoleMarketingLead,
	RoleFinanceLead,
}

// capabilities maps each role to the actions it is allowed to take.
// Roles absent from this table have no capabilities at all.
var capabilities = map[ProjectRole][]Action{
	RoleProjectLead:       {ActionManage, ActionEdit, ActionCreate, ActionDelete, ActionApprove},
	RoleCoLead:            {ActionManage, ActionEdit, ActionCreate, ActionApprove},
	RoleDepartmentHead:    {ActionManage, ActionEdit, ActionCreate, ActionApprove},
	RoleTeamLead:          {ActionEdit, ActionCreate, ActionApprove},
	RoleMentor:            {ActionEdit, ActionApprove},
	RoleSeniorContributor: {ActionEdit, ActionCreate},
	RoleContributor:       {ActionEdit, ActionCreate},
	RoleJuniorContributor: {ActionCreate},
	RoleTechLead:          {ActionEdit, ActionCreate, ActionApprove},
	RoleDesignLead:        {ActionEdit, ActionCreate, ActionApprove},
	RoleMarketingLead:     {ActionEdit, ActionCreate},
	RoleFinanceLead:       {ActionEdit, ActionApprove},
}

// IsValidRole reports whether the given name is a known project role.
func IsValidRole(role ProjectRole) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// ActionsFor returns the actions the given role may take. Unknown roles
// get an empty set, never an error: an unrecognized role must deny
// everything rather than fall through to a default grant.
func ActionsFor(role ProjectRole) []Action {
	caps, ok := capabilities[role]
	if !ok {
		return []Action{}
	}
	out := make([]Action, len(caps))
	copy(out, caps)
	return out
}

// CanPerform reports whether the role grants the given action.
func CanPerform(role ProjectRole, action Action) bool {
	for _, a := range capabilities[role] {
		if a == action {
			return true
		}
	}
	return false
}

// Describe returns the capability set for a role, or a validation error
// when the role name is not recognized. Used by the HTTP layer where an
// unknown role in the path is a client mistake worth surfacing.
func Describe(role ProjectRole) ([]Action, error) {
	if !IsValidRole(role) {
		return nil, internal_errors.NewValidationError("unknown project role: "+string(role), internal_errors.ErrCodeInvalidCategory)
	}
	return ActionsFor(role), nil
}
