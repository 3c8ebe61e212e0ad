package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hkd-portal-api/internal/models"
	"github.com/noah-isme/hkd-portal-api/internal/repository"
)

// AuthzService resolves whether a principal may perform an action on a
// resource. Resolution is a pure function over the principal's active role
// assignments: absence of data denies, it never errors. Results are memoized
// in Redis for a short TTL; grant/revoke paths call Invalidate.
type AuthzService interface {
	Authorize(ctx context.Context, principalID uint, resource models.Resource, action models.Action) bool
	Invalidate(ctx context.Context, principalID uint)
}

type authzService struct {
	rbac   repository.RBACRepository
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewAuthzService constructs the permission resolver. The redis client is
// optional; without it every call resolves against the store.
func NewAuthzService(rbac repository.RBACRepository, redisClient *redis.Client, ttl time.Duration, logger zerolog.Logger) AuthzService {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &authzService{
		rbac:   rbac,
		redis:  redisClient,
		ttl:    ttl,
		logger: logger.With().Str("component", "authz_service").Logger(),
	}
}

func authzCacheKey(principalID uint) string {
	return fmt.Sprintf("hkd:authz:%d", principalID)
}

func permissionKey(resource models.Resource, action models.Action) string {
	return string(resource) + ":" + string(action)
}

func (s *authzService) Authorize(ctx context.Context, principalID uint, resource models.Resource, action models.Action) bool {
	if principalID == 0 {
		return false
	}

	wanted := permissionKey(resource, action)

	if keys, ok := s.cached(ctx, principalID); ok {
		_, allowed := keys[wanted]
		return allowed
	}

	permissions, err := s.rbac.PermissionsForUser(ctx, principalID)
	if err != nil {
		// A failed lookup denies rather than errors; callers translate the
		// boolean into a Forbidden response.
		s.logger.Error().Err(err).Uint("principal_id", principalID).Msg("permission lookup failed")
		return false
	}

	keys := make(map[string]struct{}, len(permissions))
	for _, permission := range permissions {
		keys[permissionKey(permission.Resource, permission.Action)] = struct{}{}
	}
	s.store(ctx, principalID, keys)

	_, allowed := keys[wanted]
	return allowed
}

func (s *authzService) Invalidate(ctx context.Context, principalID uint) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, authzCacheKey(principalID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("principal_id", principalID).Msg("failed to invalidate authz cache")
	}
}

func (s *authzService) cached(ctx context.Context, principalID uint) (map[string]struct{}, bool) {
	if s.redis == nil {
		return nil, false
	}

	raw, err := s.redis.Get(ctx, authzCacheKey(principalID)).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("authz cache read failed")
		}
		return nil, false
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, false
	}

	keys := make(map[string]struct{}, len(list))
	for _, item := range list {
		keys[item] = struct{}{}
	}
	return keys, true
}

func (s *authzService) store(ctx context.Context, principalID uint, keys map[string]struct{}) {
	if s.redis == nil {
		return
	}

	list := make([]string, 0, len(keys))
	for key := range keys {
		list = append(list, key)
	}

	payload, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, authzCacheKey(principalID), payload, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("authz cache write failed")
	}
}
