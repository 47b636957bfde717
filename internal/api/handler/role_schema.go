package handler

// messageResponse is the envelope used for error responses and for
// operations that return only a confirmation message.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Role request types ---

type createRoleRequest struct {
	RoleName      string   `json:"roleName" validate:"required"`
	AccessModules []string `json:"accessModules"`
}

type updateAccessModulesRequest struct {
	RoleID           string   `json:"roleId"           validate:"required"`
	NewAccessModules []string `json:"newAccessModules" validate:"required"`
}

type moduleMutationRequest struct {
	RoleID     string `json:"roleId"     validate:"required"`
	ModuleName string `json:"moduleName" validate:"required"`
}
