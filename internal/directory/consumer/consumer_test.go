package consumer

import (
	"context"
	"testing"

	"directory_backend/internal/directory/intent"
	"directory_backend/internal/directory/repository"
	"directory_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestApplier(t *testing.T) (*Applier, repository.Repository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := repository.New(client)
	return New(repo, logger.New("development")), repo, mr
}

func TestApplyCreateOrganizationIsIdempotent(t *testing.T) {
	applier, repo, _ := newTestApplier(t)
	ctx := context.Background()

	in := intent.CreateOrganization("org-1", "Acme", "widgets", "2026-08-31T10:00:00Z")

	if err := applier.ApplyBatch(ctx, []intent.Intent{in}); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	first, err := repo.GetOrganization(ctx, "org-1")
	if err != nil {
		t.Fatalf("organization missing after apply: %v", err)
	}

	// Redelivery of the same intent must reproduce the exact same state.
	if err := applier.ApplyBatch(ctx, []intent.Intent{in}); err != nil {
		t.Fatalf("redelivered apply failed: %v", err)
	}
	second, err := repo.GetOrganization(ctx, "org-1")
	if err != nil {
		t.Fatalf("organization missing after redelivery: %v", err)
	}

	if first != second {
		t.Fatalf("redelivery changed store state: %+v vs %+v", first, second)
	}
	if second.Name != "Acme" || second.Description != "widgets" {
		t.Fatalf("unexpected record: %+v", second)
	}
	if second.UpdatedAt != "2026-08-31T10:00:00Z" {
		t.Fatalf("updatedAt must come from the intent, got %q", second.UpdatedAt)
	}
}

func TestApplyUpdateOrganizationPartialFields(t *testing.T) {
	applier, repo, _ := newTestApplier(t)
	ctx := context.Background()

	create := intent.CreateOrganization("org-1", "Acme", "widgets", "2026-08-31T10:00:00Z")
	if err := applier.ApplyBatch(ctx, []intent.Intent{create}); err != nil {
		t.Fatalf("create apply failed: %v", err)
	}

	description := "sprockets"
	update := intent.UpdateOrganization("org-1", nil, &description, "2026-08-31T11:00:00Z")
	if err := applier.ApplyBatch(ctx, []intent.Intent{update}); err != nil {
		t.Fatalf("update apply failed: %v", err)
	}

	org, err := repo.GetOrganization(ctx, "org-1")
	if err != nil {
		t.Fatalf("organization missing: %v", err)
	}
	if org.Name != "Acme" {
		t.Fatalf("partial update must leave name unchanged, got %q", org.Name)
	}
	if org.Description != "sprockets" {
		t.Fatalf("description not updated, got %q", org.Description)
	}
	if org.UpdatedAt != "2026-08-31T11:00:00Z" {
		t.Fatalf("updatedAt must be the intent's value, got %q", org.UpdatedAt)
	}

	// Reapplying the update reproduces the same state, including updatedAt.
	if err := applier.ApplyBatch(ctx, []intent.Intent{update}); err != nil {
		t.Fatalf("redelivered update failed: %v", err)
	}
	again, _ := repo.GetOrganization(ctx, "org-1")
	if again != org {
		t.Fatalf("redelivered update changed state: %+v vs %+v", org, again)
	}
}

func TestApplyCreateUserRegistersSecondaryIndex(t *testing.T) {
	applier, repo, _ := newTestApplier(t)
	ctx := context.Background()

	in := intent.CreateUser("org-1", "user-1", "Ada", "ada@example.com", "2026-08-31T10:00:00Z")
	if err := applier.ApplyBatch(ctx, []intent.Intent{in, in}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	users, err := repo.ListUsersByOrganization(ctx, "org-1")
	if err != nil {
		t.Fatalf("index lookup failed: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("duplicate delivery must not duplicate the record, got %d users", len(users))
	}
	if users[0].Email != "ada@example.com" || users[0].OrgID != "org-1" {
		t.Fatalf("unexpected record: %+v", users[0])
	}
}

func TestApplyUpdateUserUsesIntentTimestamp(t *testing.T) {
	applier, repo, _ := newTestApplier(t)
	ctx := context.Background()

	create := intent.CreateUser("org-1", "user-1", "Ada", "ada@example.com", "2026-08-31T10:00:00Z")
	name := "Ada Lovelace"
	email := "ada@example.com"
	update := intent.UpdateUser("org-1", "user-1", &name, &email, "2026-08-31T12:00:00Z")

	if err := applier.ApplyBatch(ctx, []intent.Intent{create, update}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	user, err := repo.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("user missing: %v", err)
	}
	if user.Name != "Ada Lovelace" {
		t.Fatalf("name not updated, got %q", user.Name)
	}
	if user.CreatedAt != "2026-08-31T10:00:00Z" {
		t.Fatalf("createdAt must survive the update, got %q", user.CreatedAt)
	}
	if user.UpdatedAt != "2026-08-31T12:00:00Z" {
		t.Fatalf("updatedAt must be the intent's value, got %q", user.UpdatedAt)
	}
}

func TestUnknownOperationIsSkippedNotFatal(t *testing.T) {
	applier, repo, _ := newTestApplier(t)
	ctx := context.Background()

	unknown := intent.Intent{Op: "dropOrganization", OrgID: "org-9"}
	create := intent.CreateOrganization("org-1", "Acme", "widgets", "2026-08-31T10:00:00Z")

	if err := applier.ApplyBatch(ctx, []intent.Intent{unknown, create}); err != nil {
		t.Fatalf("unknown operation must not abort the batch: %v", err)
	}

	if _, err := repo.GetOrganization(ctx, "org-1"); err != nil {
		t.Fatalf("intent after the skipped one must still apply: %v", err)
	}
}

// Two creates with the same email can both pass enqueue-time validation when
// they race against the same snapshot. The consumer then applies both: the
// duplicate is the accepted outcome of decoupled validation, not an error.
func TestDuplicateEmailRaceYieldsTwoRecords(t *testing.T) {
	applier, repo, _ := newTestApplier(t)
	ctx := context.Background()

	first := intent.CreateUser("org-1", "user-1", "Ada", "shared@example.com", "2026-08-31T10:00:00Z")
	second := intent.CreateUser("org-1", "user-2", "Grace", "shared@example.com", "2026-08-31T10:00:01Z")

	if err := applier.ApplyBatch(ctx, []intent.Intent{first, second}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	users, err := repo.ListUsersByOrganization(ctx, "org-1")
	if err != nil {
		t.Fatalf("index lookup failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected both racing records in the store, got %d", len(users))
	}
	if users[0].Email != users[1].Email {
		t.Fatalf("expected duplicate emails, got %q and %q", users[0].Email, users[1].Email)
	}
}

func TestStoreErrorAbortsBatch(t *testing.T) {
	applier, _, mr := newTestApplier(t)
	ctx := context.Background()

	mr.Close()

	in := intent.CreateOrganization("org-1", "Acme", "widgets", "2026-08-31T10:00:00Z")
	if err := applier.ApplyBatch(ctx, []intent.Intent{in}); err == nil {
		t.Fatal("store failure must propagate so the batch is redelivered")
	}
}
