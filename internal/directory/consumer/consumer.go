// Package consumer applies queued intents to the record store.
//
// Delivery is at-least-once and carries no ordering guarantee across
// different intents for the same entity, so every apply must be idempotent:
// creates are full overwrites keyed by entity identity and updates write the
// timestamp carried in the intent rather than the apply-time clock.
// Reapplying any intent reproduces the exact same store state.
package consumer

import (
	"context"

	"directory_backend/internal/directory/intent"
	"directory_backend/internal/directory/repository"
	"directory_backend/platform/logger"
)

// Applier applies batches of intents to the record store.
type Applier struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates an intent applier.
func New(repo repository.Repository, log *logger.Logger) *Applier {
	return &Applier{repo: repo, log: log}
}

// ApplyBatch applies intents in the order delivered. A store error aborts
// the batch and is returned to the delivery mechanism, which redelivers the
// whole batch; intents already applied are not rolled back. That is safe
// only because every apply is an idempotent overwrite keyed by entity
// identity. Unrecognized intents are logged and skipped, never retried.
func (a *Applier) ApplyBatch(ctx context.Context, intents []intent.Intent) error {
	for _, in := range intents {
		if err := a.apply(ctx, in); err != nil {
			a.log.StoreError("consumer.apply", err)
			return err
		}
	}
	return nil
}

func (a *Applier) apply(ctx context.Context, in intent.Intent) error {
	switch in.Op {
	case intent.OpCreateOrganization:
		if err := a.repo.PutOrganization(ctx, repository.Organization{
			ID:          in.OrgID,
			Name:        deref(in.Name),
			Description: deref(in.Description),
			CreatedAt:   in.CreatedAt,
			UpdatedAt:   in.UpdatedAt,
		}); err != nil {
			return err
		}

	case intent.OpUpdateOrganization:
		if err := a.repo.UpdateOrganization(ctx, repository.UpdateOrganizationParams{
			ID:          in.OrgID,
			Name:        in.Name,
			Description: in.Description,
			UpdatedAt:   in.UpdatedAt,
		}); err != nil {
			return err
		}

	case intent.OpCreateUser:
		if err := a.repo.PutUser(ctx, repository.User{
			ID:        in.UserID,
			OrgID:     in.OrgID,
			Name:      deref(in.Name),
			Email:     deref(in.Email),
			CreatedAt: in.CreatedAt,
			UpdatedAt: in.UpdatedAt,
		}); err != nil {
			return err
		}

	case intent.OpUpdateUser:
		if err := a.repo.UpdateUser(ctx, repository.UpdateUserParams{
			ID:        in.UserID,
			Name:      in.Name,
			Email:     in.Email,
			UpdatedAt: in.UpdatedAt,
		}); err != nil {
			return err
		}

	default:
		// Unknown kinds are dropped, not failed: failing would poison the
		// batch and retry forever.
		a.log.IntentSkipped(string(in.Op), "unrecognized operation")
		return nil
	}

	a.log.IntentApplied(string(in.Op), in.EntityID())
	return nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
