// Package service provides the mutation producer and the read-only query
// service for the directory. Mutations never touch the record store
// directly: an accepted submission publishes exactly one intent to the queue
// and returns before the store is updated.
package service

import (
	"context"
	"strings"
	"time"

	"directory_backend/internal/directory/intent"
	"directory_backend/internal/directory/repository"
	"directory_backend/internal/directory/transport"
	"directory_backend/platform/apperr"
	"directory_backend/platform/logger"

	"github.com/google/uuid"
)

// Publisher publishes an intent to the queue.
type Publisher interface {
	Publish(ctx context.Context, in intent.Intent) error
}

// Producer validates mutation requests against current store state and
// publishes intents for the accepted ones.
type Producer struct {
	repo repository.Repository
	pub  Publisher
	log  *logger.Logger
}

// NewProducer creates a mutation producer.
func NewProducer(repo repository.Repository, pub Publisher, log *logger.Logger) *Producer {
	return &Producer{repo: repo, pub: pub, log: log}
}

// SubmitCreateOrganization validates name uniqueness against the current
// collection snapshot, assigns a fresh orgId and enqueues the create.
func (p *Producer) SubmitCreateOrganization(ctx context.Context, req transport.CreateOrganizationRequest) (transport.OrganizationAcceptedResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Description == "" {
		return transport.OrganizationAcceptedResponse{}, apperr.Validation("name and description are required")
	}

	orgs, err := p.repo.ListOrganizations(ctx)
	if err != nil {
		return transport.OrganizationAcceptedResponse{}, err
	}
	if err := validateOrganizationName(name, orgs); err != nil {
		return transport.OrganizationAcceptedResponse{}, err
	}

	orgID := uuid.NewString()
	in := intent.CreateOrganization(orgID, name, req.Description, nowUTC())
	if err := p.publish(ctx, in); err != nil {
		return transport.OrganizationAcceptedResponse{}, err
	}

	p.log.Info("organization create accepted", "orgId", orgID, "name", name)
	return transport.OrganizationAcceptedResponse{
		Message: "organization creation accepted",
		OrgID:   orgID,
	}, nil
}

// SubmitUpdateOrganization verifies the organization exists at validation
// time and enqueues a partial update carrying only the fields to change.
func (p *Producer) SubmitUpdateOrganization(ctx context.Context, req transport.UpdateOrganizationRequest) (transport.OrganizationAcceptedResponse, error) {
	if req.OrgID == "" {
		return transport.OrganizationAcceptedResponse{}, apperr.Validation("orgId is required")
	}
	if req.Name == nil && req.Description == nil {
		return transport.OrganizationAcceptedResponse{}, apperr.Validation("at least one of name or description is required")
	}

	if _, err := p.repo.GetOrganization(ctx, req.OrgID); err != nil {
		return transport.OrganizationAcceptedResponse{}, err
	}

	in := intent.UpdateOrganization(req.OrgID, req.Name, req.Description, nowUTC())
	if err := p.publish(ctx, in); err != nil {
		return transport.OrganizationAcceptedResponse{}, err
	}

	p.log.Info("organization update accepted", "orgId", req.OrgID)
	return transport.OrganizationAcceptedResponse{
		Message: "organization update accepted",
		OrgID:   req.OrgID,
	}, nil
}

// SubmitCreateUser validates the owning organization and the per-organization
// email uniqueness, resolves the userId and enqueues the create. A
// client-supplied userId is accepted without a uniqueness check, which keeps
// idempotent client-generated IDs possible.
func (p *Producer) SubmitCreateUser(ctx context.Context, orgID string, req transport.CreateUserRequest) (transport.UserAcceptedResponse, error) {
	return p.submitUser(ctx, orgID, req.UserID, req.Name, req.Email, false)
}

// SubmitUpdateUser validates like SubmitCreateUser but excludes the target
// user from the email uniqueness check and enqueues an update intent.
func (p *Producer) SubmitUpdateUser(ctx context.Context, orgID string, req transport.UpdateUserRequest) (transport.UserAcceptedResponse, error) {
	return p.submitUser(ctx, orgID, req.UserID, req.Name, req.Email, true)
}

func (p *Producer) submitUser(ctx context.Context, orgID, userID, name, email string, isUpdate bool) (transport.UserAcceptedResponse, error) {
	if orgID == "" || strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return transport.UserAcceptedResponse{}, apperr.Validation("orgId, name and email are required")
	}

	if _, err := p.repo.GetOrganization(ctx, orgID); err != nil {
		return transport.UserAcceptedResponse{}, err
	}

	users, err := p.repo.ListUsersByOrganization(ctx, orgID)
	if err != nil {
		return transport.UserAcceptedResponse{}, err
	}
	excluded := ""
	if isUpdate {
		excluded = userID
	}
	if err := validateUserEmail(email, excluded, users); err != nil {
		return transport.UserAcceptedResponse{}, err
	}

	if userID == "" {
		userID = uuid.NewString()
	} else if !isUpdate {
		p.log.Debug("client-supplied userId on create", "userId", userID, "orgId", orgID)
	}

	var in intent.Intent
	var message string
	if isUpdate {
		in = intent.UpdateUser(orgID, userID, &name, &email, nowUTC())
		message = "user update accepted"
	} else {
		in = intent.CreateUser(orgID, userID, name, email, nowUTC())
		message = "user creation accepted"
	}
	if err := p.publish(ctx, in); err != nil {
		return transport.UserAcceptedResponse{}, err
	}

	p.log.Info("user mutation accepted", "operation", string(in.Op), "userId", userID, "orgId", orgID)
	return transport.UserAcceptedResponse{Message: message, UserID: userID}, nil
}

func (p *Producer) publish(ctx context.Context, in intent.Intent) error {
	if err := p.pub.Publish(ctx, in); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to enqueue mutation", err).WithOp("producer.publish")
	}
	return nil
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
