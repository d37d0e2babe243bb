package transport

// CreateOrganizationRequest contains data for creating a new organization.
type CreateOrganizationRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"required,max=1000"`
}

// UpdateOrganizationRequest contains data for updating an existing
// organization. At least one of Name/Description must be present; the
// producer enforces that since validation tags cannot express it.
type UpdateOrganizationRequest struct {
	OrgID       string  `json:"orgId" validate:"required"`
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// CreateUserRequest contains data for creating a user within an organization.
// UserID may be client-supplied; when absent one is generated.
type CreateUserRequest struct {
	UserID string `json:"userId,omitempty"`
	Name   string `json:"name" validate:"required,min=1,max=200"`
	Email  string `json:"email" validate:"required,email"`
}

// UpdateUserRequest contains data for updating a user within an organization.
type UpdateUserRequest struct {
	UserID string `json:"userId,omitempty"`
	Name   string `json:"name" validate:"required,min=1,max=200"`
	Email  string `json:"email" validate:"required,email"`
}

// OrganizationResponse represents an organization in API responses.
type OrganizationResponse struct {
	OrgID       string `json:"orgId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	UserID    string `json:"userId"`
	OrgID     string `json:"orgId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Response envelopes. Every body carries a message field plus the
// entity-specific field.

// OrganizationAcceptedResponse acknowledges an enqueued organization
// mutation. 202 means accepted, not applied: a read may still observe the
// pre-mutation state until the consumer catches up.
type OrganizationAcceptedResponse struct {
	Message string `json:"message"`
	OrgID   string `json:"orgId"`
}

// UserAcceptedResponse acknowledges an enqueued user mutation.
type UserAcceptedResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// OrganizationEnvelope wraps a single organization read.
type OrganizationEnvelope struct {
	Message      string               `json:"message"`
	Organization OrganizationResponse `json:"organization"`
}

// OrganizationListEnvelope wraps the full organization collection.
type OrganizationListEnvelope struct {
	Message       string                 `json:"message"`
	Organizations []OrganizationResponse `json:"organizations"`
}

// UserEnvelope wraps a single user read.
type UserEnvelope struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// UserListEnvelope wraps a per-organization user listing.
type UserListEnvelope struct {
	Message string         `json:"message"`
	Users   []UserResponse `json:"users"`
}
