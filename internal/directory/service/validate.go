package service

import (
	"directory_backend/internal/directory/repository"
	"directory_backend/platform/apperr"
)

// Uniqueness checks run against a snapshot of store state fetched at the
// instant of the call. They are not constraints enforced by the store: two
// near-simultaneous submissions can both validate against the same snapshot
// and both enqueue, and the consumer will apply both. That duplicate window
// is an accepted tradeoff of decoupling validation from the write.

// validateOrganizationName reports a conflict when any organization in the
// snapshot already uses the candidate name. Comparison is exact.
func validateOrganizationName(name string, orgs []repository.Organization) error {
	for _, org := range orgs {
		if org.Name == name {
			return apperr.Conflict("organization name already in use")
		}
	}
	return nil
}

// validateUserEmail reports a conflict when another user in the snapshot
// already uses the candidate email. The snapshot is scoped to one
// organization, so the same email may exist in a different organization.
// excludedUserID lets an update-in-place skip comparing a record against
// itself.
func validateUserEmail(email, excludedUserID string, users []repository.User) error {
	for _, user := range users {
		if user.ID == excludedUserID {
			continue
		}
		if user.Email == email {
			return apperr.Conflict("email already in use within this organization")
		}
	}
	return nil
}
