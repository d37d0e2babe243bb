package service

import (
	"context"

	"directory_backend/internal/directory/repository"
	"directory_backend/internal/directory/transport"
	"directory_backend/platform/apperr"
	"directory_backend/platform/logger"
)

// Query serves read-only lookups straight from the record store. Reads are
// eventually consistent with respect to accepted mutations: a 202 from the
// producer does not guarantee the next read observes the change.
type Query struct {
	repo repository.Repository
	log  *logger.Logger
}

// NewQuery creates the read-side service.
func NewQuery(repo repository.Repository, log *logger.Logger) *Query {
	return &Query{repo: repo, log: log}
}

// GetOrganization retrieves one organization by ID.
func (q *Query) GetOrganization(ctx context.Context, orgID string) (transport.OrganizationResponse, error) {
	org, err := q.repo.GetOrganization(ctx, orgID)
	if err != nil {
		return transport.OrganizationResponse{}, err
	}
	return toOrganizationResponse(org), nil
}

// GetAllOrganizations retrieves the full collection. No pagination.
func (q *Query) GetAllOrganizations(ctx context.Context) ([]transport.OrganizationResponse, error) {
	orgs, err := q.repo.ListOrganizations(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]transport.OrganizationResponse, len(orgs))
	for i, org := range orgs {
		responses[i] = toOrganizationResponse(org)
	}
	return responses, nil
}

// GetUser retrieves one user scoped to an organization. The store key is the
// user ID alone, so the fetched record's orgId must match the requested
// scope; a mismatch is reported as not found rather than leaking the record.
func (q *Query) GetUser(ctx context.Context, orgID, userID string) (transport.UserResponse, error) {
	if _, err := q.repo.GetOrganization(ctx, orgID); err != nil {
		return transport.UserResponse{}, err
	}

	user, err := q.repo.GetUser(ctx, userID)
	if err != nil {
		return transport.UserResponse{}, err
	}
	if user.OrgID != orgID {
		return transport.UserResponse{}, apperr.NotFound("user not found")
	}
	return toUserResponse(user), nil
}

// GetAllUsersByOrganization lists an organization's users via the secondary
// index.
func (q *Query) GetAllUsersByOrganization(ctx context.Context, orgID string) ([]transport.UserResponse, error) {
	if _, err := q.repo.GetOrganization(ctx, orgID); err != nil {
		return nil, err
	}

	users, err := q.repo.ListUsersByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	responses := make([]transport.UserResponse, len(users))
	for i, user := range users {
		responses[i] = toUserResponse(user)
	}
	return responses, nil
}

func toOrganizationResponse(org repository.Organization) transport.OrganizationResponse {
	return transport.OrganizationResponse{
		OrgID:       org.ID,
		Name:        org.Name,
		Description: org.Description,
		CreatedAt:   org.CreatedAt,
		UpdatedAt:   org.UpdatedAt,
	}
}

func toUserResponse(user repository.User) transport.UserResponse {
	return transport.UserResponse{
		UserID:    user.ID,
		OrgID:     user.OrgID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
