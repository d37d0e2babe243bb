package service

import (
	"context"
	"testing"

	"directory_backend/internal/directory/intent"
	"directory_backend/internal/directory/repository"
	"directory_backend/internal/directory/transport"
	"directory_backend/platform/apperr"
	"directory_backend/platform/logger"
)

type fakeRepo struct {
	orgs  map[string]repository.Organization
	users map[string]repository.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orgs:  make(map[string]repository.Organization),
		users: make(map[string]repository.User),
	}
}

func (f *fakeRepo) GetOrganization(_ context.Context, id string) (repository.Organization, error) {
	org, ok := f.orgs[id]
	if !ok {
		return repository.Organization{}, apperr.NotFound("organization not found")
	}
	return org, nil
}

func (f *fakeRepo) ListOrganizations(context.Context) ([]repository.Organization, error) {
	orgs := make([]repository.Organization, 0, len(f.orgs))
	for _, org := range f.orgs {
		orgs = append(orgs, org)
	}
	return orgs, nil
}

func (f *fakeRepo) PutOrganization(_ context.Context, org repository.Organization) error {
	f.orgs[org.ID] = org
	return nil
}

func (f *fakeRepo) UpdateOrganization(context.Context, repository.UpdateOrganizationParams) error {
	return nil
}

func (f *fakeRepo) GetUser(_ context.Context, id string) (repository.User, error) {
	user, ok := f.users[id]
	if !ok {
		return repository.User{}, apperr.NotFound("user not found")
	}
	return user, nil
}

func (f *fakeRepo) ListUsersByOrganization(_ context.Context, orgID string) ([]repository.User, error) {
	users := make([]repository.User, 0)
	for _, user := range f.users {
		if user.OrgID == orgID {
			users = append(users, user)
		}
	}
	return users, nil
}

func (f *fakeRepo) PutUser(_ context.Context, user repository.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeRepo) UpdateUser(context.Context, repository.UpdateUserParams) error {
	return nil
}

type fakePublisher struct {
	published []intent.Intent
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, in intent.Intent) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, in)
	return nil
}

func newProducer(repo repository.Repository, pub Publisher) *Producer {
	return NewProducer(repo, pub, logger.New("development"))
}

func TestSubmitCreateOrganizationPublishesIntent(t *testing.T) {
	repo := newFakeRepo()
	pub := &fakePublisher{}
	p := newProducer(repo, pub)

	result, err := p.SubmitCreateOrganization(context.Background(), transport.CreateOrganizationRequest{
		Name:        "Acme",
		Description: "widgets",
	})
	if err != nil {
		t.Fatalf("SubmitCreateOrganization returned error: %v", err)
	}
	if result.OrgID == "" {
		t.Fatal("expected a generated orgId")
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected exactly one published intent, got %d", len(pub.published))
	}

	in := pub.published[0]
	if in.Op != intent.OpCreateOrganization {
		t.Fatalf("expected createOrganization intent, got %s", in.Op)
	}
	if in.OrgID != result.OrgID {
		t.Fatalf("intent orgId %q does not match accepted orgId %q", in.OrgID, result.OrgID)
	}
	if in.Name == nil || *in.Name != "Acme" {
		t.Fatalf("intent must carry the full target name, got %v", in.Name)
	}
	if in.CreatedAt == "" || in.UpdatedAt == "" {
		t.Fatal("create intent must carry producer-stamped timestamps")
	}

	// No store mutation on the producer path.
	if len(repo.orgs) != 0 {
		t.Fatal("producer must not write to the record store")
	}
}

func TestSubmitCreateOrganizationValidation(t *testing.T) {
	pub := &fakePublisher{}
	p := newProducer(newFakeRepo(), pub)

	_, err := p.SubmitCreateOrganization(context.Background(), transport.CreateOrganizationRequest{Name: "Acme"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for missing description, got %v", err)
	}
	if len(pub.published) != 0 {
		t.Fatal("rejected submission must publish nothing")
	}
}

func TestSubmitCreateOrganizationConflict(t *testing.T) {
	repo := newFakeRepo()
	repo.orgs["org-1"] = repository.Organization{ID: "org-1", Name: "Acme"}
	pub := &fakePublisher{}
	p := newProducer(repo, pub)

	_, err := p.SubmitCreateOrganization(context.Background(), transport.CreateOrganizationRequest{
		Name:        "Acme",
		Description: "widgets",
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict for duplicate name, got %v", err)
	}
	if len(pub.published) != 0 {
		t.Fatal("conflicting submission must publish nothing")
	}
}

func TestSubmitUpdateOrganizationNotFoundPublishesNothing(t *testing.T) {
	pub := &fakePublisher{}
	p := newProducer(newFakeRepo(), pub)

	name := "X"
	_, err := p.SubmitUpdateOrganization(context.Background(), transport.UpdateOrganizationRequest{
		OrgID: "missing-id",
		Name:  &name,
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(pub.published) != 0 {
		t.Fatal("not-found submission must publish nothing")
	}
}

func TestSubmitUpdateOrganizationCarriesOnlyPresentFields(t *testing.T) {
	repo := newFakeRepo()
	repo.orgs["org-1"] = repository.Organization{ID: "org-1", Name: "Acme", Description: "old"}
	pub := &fakePublisher{}
	p := newProducer(repo, pub)

	description := "new description"
	result, err := p.SubmitUpdateOrganization(context.Background(), transport.UpdateOrganizationRequest{
		OrgID:       "org-1",
		Description: &description,
	})
	if err != nil {
		t.Fatalf("SubmitUpdateOrganization returned error: %v", err)
	}
	if result.OrgID != "org-1" {
		t.Fatalf("expected accepted orgId org-1, got %q", result.OrgID)
	}

	in := pub.published[0]
	if in.Op != intent.OpUpdateOrganization {
		t.Fatalf("expected updateOrganization intent, got %s", in.Op)
	}
	if in.Name != nil {
		t.Fatal("absent name must not appear in the intent")
	}
	if in.Description == nil || *in.Description != description {
		t.Fatalf("intent must carry the new description, got %v", in.Description)
	}
	if in.UpdatedAt == "" {
		t.Fatal("update intent must carry a fresh updatedAt")
	}
}

func TestSubmitUpdateOrganizationRequiresAField(t *testing.T) {
	repo := newFakeRepo()
	repo.orgs["org-1"] = repository.Organization{ID: "org-1", Name: "Acme"}
	p := newProducer(repo, &fakePublisher{})

	_, err := p.SubmitUpdateOrganization(context.Background(), transport.UpdateOrganizationRequest{OrgID: "org-1"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error when no field present, got %v", err)
	}
}

func TestSubmitCreateUserGeneratesIDAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	repo.orgs["org-1"] = repository.Organization{ID: "org-1", Name: "Acme"}
	pub := &fakePublisher{}
	p := newProducer(repo, pub)

	result, err := p.SubmitCreateUser(context.Background(), "org-1", transport.CreateUserRequest{
		Name:  "Ada",
		Email: "ada@example.com",
	})
	if err != nil {
		t.Fatalf("SubmitCreateUser returned error: %v", err)
	}
	if result.UserID == "" {
		t.Fatal("expected a generated userId")
	}

	in := pub.published[0]
	if in.Op != intent.OpCreateUser {
		t.Fatalf("expected createUser intent, got %s", in.Op)
	}
	if in.OrgID != "org-1" || in.UserID != result.UserID {
		t.Fatalf("intent keys mismatch: orgId=%q userId=%q", in.OrgID, in.UserID)
	}
}

func TestSubmitCreateUserKeepsClientSuppliedID(t *testing.T) {
	repo := newFakeRepo()
	repo.orgs["org-1"] = repository.Organization{ID: "org-1", Name: "Acme"}
	pub := &fakePublisher{}
	p := newProducer(repo, pub)

	result, err := p.SubmitCreateUser(context.Background(), "org-1", transport.CreateUserRequest{
		UserID: "client-chosen",
		Name:   "Ada",
		Email:  "ada@example.com",
	})
	if err != nil {
		t.Fatalf("SubmitCreateUser returned error: %v", err)
	}
	if result.UserID != "client-chosen" {
		t.Fatalf("client-supplied userId must be preserved, got %q", result.UserID)
	}
}

func TestSubmitCreateUserRejectsUnknownOrganization(t *testing.T) {
	pub := &fakePublisher{}
	p := newProducer(newFakeRepo(), pub)

	_, err := p.SubmitCreateUser(context.Background(), "missing-org", transport.CreateUserRequest{
		Name:  "Ada",
		Email: "ada@example.com",
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for missing organization, got %v", err)
	}
	if len(pub.published) != 0 {
		t.Fatal("not-found submission must publish nothing")
	}
}

func TestSubmitCreateUserConflictWithinOrganization(t *testing.T) {
	repo := newFakeRepo()
	repo.orgs["org-1"] = repository.Organization{ID: "org-1", Name: "Acme"}
	repo.users["user-1"] = repository.User{ID: "user-1", OrgID: "org-1", Email: "ada@example.com"}
	p := newProducer(repo, &fakePublisher{})

	_, err := p.SubmitCreateUser(context.Background(), "org-1", transport.CreateUserRequest{
		Name:  "Ada II",
		Email: "ada@example.com",
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict for duplicate email in org, got %v", err)
	}
}

func TestSubmitCreateUserAllowsSameEmailAcrossOrganizations(t *testing.T) {
	repo := newFakeRepo()
	repo.orgs["org-1"] = repository.Organization{ID: "org-1", Name: "Acme"}
	repo.orgs["org-2"] = repository.Organization{ID: "org-2", Name: "Globex"}
	repo.users["user-1"] = repository.User{ID: "user-1", OrgID: "org-1", Email: "ada@example.com"}
	p := newProducer(repo, &fakePublisher{})

	if _, err := p.SubmitCreateUser(context.Background(), "org-2", transport.CreateUserRequest{
		Name:  "Ada",
		Email: "ada@example.com",
	}); err != nil {
		t.Fatalf("same email in a different organization must be accepted, got %v", err)
	}
}

func TestSubmitUpdateUserExcludesSelfFromEmailCheck(t *testing.T) {
	repo := newFakeRepo()
	repo.orgs["org-1"] = repository.Organization{ID: "org-1", Name: "Acme"}
	repo.users["user-1"] = repository.User{ID: "user-1", OrgID: "org-1", Email: "ada@example.com"}
	pub := &fakePublisher{}
	p := newProducer(repo, pub)

	result, err := p.SubmitUpdateUser(context.Background(), "org-1", transport.UpdateUserRequest{
		UserID: "user-1",
		Name:   "Ada Lovelace",
		Email:  "ada@example.com",
	})
	if err != nil {
		t.Fatalf("update keeping its own email must be accepted, got %v", err)
	}
	if pub.published[0].Op != intent.OpUpdateUser {
		t.Fatalf("expected updateUser intent, got %s", pub.published[0].Op)
	}
	if result.UserID != "user-1" {
		t.Fatalf("expected userId user-1, got %q", result.UserID)
	}
}

func TestPublishFailureSurfacesAsInternal(t *testing.T) {
	repo := newFakeRepo()
	pub := &fakePublisher{err: context.DeadlineExceeded}
	p := newProducer(repo, pub)

	_, err := p.SubmitCreateOrganization(context.Background(), transport.CreateOrganizationRequest{
		Name:        "Acme",
		Description: "widgets",
	})
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("queue failure must surface as internal, got %v", err)
	}
}
