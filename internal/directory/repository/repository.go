// Package repository implements the record store on Redis. Organizations and
// users are stored as hashes keyed by their IDs, with set-based secondary
// indexes for collection scans and per-organization user lookups.
package repository

import (
	"context"

	"directory_backend/platform/apperr"

	"github.com/redis/go-redis/v9"
)

const (
	orgKeyPrefix  = "directory:org:"
	userKeyPrefix = "directory:user:"
	orgSetKey     = "directory:orgs"
)

type redisRepository struct {
	client *redis.Client
}

// New creates a Redis-backed record store repository.
func New(client *redis.Client) Repository {
	return &redisRepository{client: client}
}

func orgKey(id string) string { return orgKeyPrefix + id }

func userKey(id string) string { return userKeyPrefix + id }

// orgUsersKey is the secondary index: the set of user IDs belonging to one
// organization.
func orgUsersKey(orgID string) string { return orgKeyPrefix + orgID + ":users" }

func storeErr(op string, err error) error {
	return apperr.Wrap(apperr.KindInternal, "record store unavailable", err).WithOp(op)
}

// GetOrganization fetches a single organization by ID.
func (r *redisRepository) GetOrganization(ctx context.Context, id string) (Organization, error) {
	fields, err := r.client.HGetAll(ctx, orgKey(id)).Result()
	if err != nil {
		return Organization{}, storeErr("repository.GetOrganization", err)
	}
	if len(fields) == 0 {
		return Organization{}, apperr.NotFound("organization not found")
	}
	return orgFromHash(fields), nil
}

// ListOrganizations returns the full organization collection. Used by the
// read API and by enqueue-time name uniqueness checks; a full scan is
// acknowledged as inefficient at scale.
func (r *redisRepository) ListOrganizations(ctx context.Context) ([]Organization, error) {
	ids, err := r.client.SMembers(ctx, orgSetKey).Result()
	if err != nil {
		return nil, storeErr("repository.ListOrganizations", err)
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, orgKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, storeErr("repository.ListOrganizations", err)
	}

	orgs := make([]Organization, 0, len(ids))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		orgs = append(orgs, orgFromHash(fields))
	}
	return orgs, nil
}

// PutOrganization writes the full record, replacing whatever was stored
// under the same ID. Reapplying the same put is a no-op on store state.
func (r *redisRepository) PutOrganization(ctx context.Context, org Organization) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, orgKey(org.ID))
	pipe.HSet(ctx, orgKey(org.ID), orgToHash(org))
	pipe.SAdd(ctx, orgSetKey, org.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr("repository.PutOrganization", err)
	}
	return nil
}

// UpdateOrganization sets only the named fields plus updatedAt.
func (r *redisRepository) UpdateOrganization(ctx context.Context, params UpdateOrganizationParams) error {
	fields := map[string]interface{}{
		"updatedAt": params.UpdatedAt,
	}
	if params.Name != nil {
		fields["name"] = *params.Name
	}
	if params.Description != nil {
		fields["description"] = *params.Description
	}

	if err := r.client.HSet(ctx, orgKey(params.ID), fields).Err(); err != nil {
		return storeErr("repository.UpdateOrganization", err)
	}
	return nil
}

func orgFromHash(fields map[string]string) Organization {
	return Organization{
		ID:          fields["id"],
		Name:        fields["name"],
		Description: fields["description"],
		CreatedAt:   fields["createdAt"],
		UpdatedAt:   fields["updatedAt"],
	}
}

func orgToHash(org Organization) map[string]interface{} {
	return map[string]interface{}{
		"id":          org.ID,
		"name":        org.Name,
		"description": org.Description,
		"createdAt":   org.CreatedAt,
		"updatedAt":   org.UpdatedAt,
	}
}
