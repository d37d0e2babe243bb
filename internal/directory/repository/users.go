package repository

import (
	"context"
	"sort"

	"directory_backend/platform/apperr"

	"golang.org/x/sync/errgroup"
)

// listHydrationLimit bounds concurrent hash fetches when hydrating the
// per-organization user index.
const listHydrationLimit = 8

// GetUser fetches a single user by ID. The store key is the user ID alone;
// callers that need organization scoping must check OrgID themselves.
func (r *redisRepository) GetUser(ctx context.Context, id string) (User, error) {
	fields, err := r.client.HGetAll(ctx, userKey(id)).Result()
	if err != nil {
		return User{}, storeErr("repository.GetUser", err)
	}
	if len(fields) == 0 {
		return User{}, apperr.NotFound("user not found")
	}
	return userFromHash(fields), nil
}

// ListUsersByOrganization resolves the secondary index for one organization
// and hydrates the member records concurrently.
func (r *redisRepository) ListUsersByOrganization(ctx context.Context, orgID string) ([]User, error) {
	ids, err := r.client.SMembers(ctx, orgUsersKey(orgID)).Result()
	if err != nil {
		return nil, storeErr("repository.ListUsersByOrganization", err)
	}

	results := make([]User, len(ids))
	found := make([]bool, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listHydrationLimit)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			fields, err := r.client.HGetAll(gctx, userKey(id)).Result()
			if err != nil {
				return err
			}
			if len(fields) == 0 {
				return nil
			}
			results[i] = userFromHash(fields)
			found[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storeErr("repository.ListUsersByOrganization", err)
	}

	users := make([]User, 0, len(ids))
	for i := range results {
		if found[i] {
			users = append(users, results[i])
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// PutUser writes the full record and registers it in the organization's
// secondary index. Reapplying the same put is a no-op on store state.
func (r *redisRepository) PutUser(ctx context.Context, user User) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, userKey(user.ID))
	pipe.HSet(ctx, userKey(user.ID), userToHash(user))
	pipe.SAdd(ctx, orgUsersKey(user.OrgID), user.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr("repository.PutUser", err)
	}
	return nil
}

// UpdateUser sets only the named fields plus updatedAt. OrgID is never
// rewritten: a user belongs to one organization for its lifetime.
func (r *redisRepository) UpdateUser(ctx context.Context, params UpdateUserParams) error {
	fields := map[string]interface{}{
		"updatedAt": params.UpdatedAt,
	}
	if params.Name != nil {
		fields["name"] = *params.Name
	}
	if params.Email != nil {
		fields["email"] = *params.Email
	}

	if err := r.client.HSet(ctx, userKey(params.ID), fields).Err(); err != nil {
		return storeErr("repository.UpdateUser", err)
	}
	return nil
}

func userFromHash(fields map[string]string) User {
	return User{
		ID:        fields["id"],
		OrgID:     fields["orgId"],
		Name:      fields["name"],
		Email:     fields["email"],
		CreatedAt: fields["createdAt"],
		UpdatedAt: fields["updatedAt"],
	}
}

func userToHash(user User) map[string]interface{} {
	return map[string]interface{}{
		"id":        user.ID,
		"orgId":     user.OrgID,
		"name":      user.Name,
		"email":     user.Email,
		"createdAt": user.CreatedAt,
		"updatedAt": user.UpdatedAt,
	}
}
