package repository

import "context"

// Organization is a stored organization record.
type Organization struct {
	ID          string `json:"orgId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// User is a stored user record. Users are keyed by ID alone; OrgID is the
// secondary-index attribute and is immutable for the lifetime of the record.
type User struct {
	ID        string `json:"userId"`
	OrgID     string `json:"orgId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// UpdateOrganizationParams carries a partial-field update. Nil fields are
// not written; UpdatedAt is always written.
type UpdateOrganizationParams struct {
	ID          string
	Name        *string
	Description *string
	UpdatedAt   string
}

// UpdateUserParams carries a partial-field update for a user record.
type UpdateUserParams struct {
	ID        string
	Name      *string
	Email     *string
	UpdatedAt string
}

// Repository is the record store interface consumed by the producer, the
// query service and the consumer. Puts are full overwrites keyed by entity
// identity; updates set only named fields. There is no delete.
type Repository interface {
	GetOrganization(ctx context.Context, id string) (Organization, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)
	PutOrganization(ctx context.Context, org Organization) error
	UpdateOrganization(ctx context.Context, params UpdateOrganizationParams) error

	GetUser(ctx context.Context, id string) (User, error)
	ListUsersByOrganization(ctx context.Context, orgID string) ([]User, error)
	PutUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, params UpdateUserParams) error
}
