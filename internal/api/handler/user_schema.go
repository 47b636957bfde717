package handler

// --- User request/response types ---

type createUserRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required"`
	Role      string `json:"role"      validate:"required"`
	Active    bool   `json:"active"`
}

type bulkSameRequest struct {
	LastName string `json:"lastName" validate:"required"`
}

type bulkUpdateItem struct {
	UserID string         `json:"userId" validate:"required"`
	Data   map[string]any `json:"data"   validate:"required"`
}

type bulkDifferentRequest struct {
	Updates []bulkUpdateItem `json:"updates" validate:"required,min=1,dive"`
}

type checkAccessRequest struct {
	UserID     string `json:"userId"     validate:"required"`
	ModuleName string `json:"moduleName" validate:"required"`
}

type checkAccessResponse struct {
	HasAccess bool `json:"hasAccess"`
}
