package storage

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/rs/zerolog/log"

	"github.com/teamspace-app/teamspace/internal/models"
)

const (
	roleCacheTTL = time.Minute
	maxRoles     = 10000
)

// RoleCache memoizes membership role lookups for the permission checks on
// the invitation endpoints. Entries are short-lived and must be invalidated
// whenever a membership row changes role.
type RoleCache struct {
	cache *ristretto.Cache[string, models.Role]
}

func NewRoleCache() *RoleCache {
	c, err := ristretto.NewCache(&ristretto.Config[string, models.Role]{
		NumCounters: maxRoles,
		MaxCost:     maxRoles,
		BufferItems: 64,
	})

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create role cache")
	}

	return &RoleCache{
		cache: c,
	}
}

func roleCacheKey(userID, companyID uint) string {
	return fmt.Sprintf("%d:%d", userID, companyID)
}

func (s *RoleCache) Get(userID, companyID uint) (models.Role, bool) {
	return s.cache.Get(roleCacheKey(userID, companyID))
}

func (s *RoleCache) Set(userID, companyID uint, role models.Role) {
	s.cache.SetWithTTL(roleCacheKey(userID, companyID), role, 1, roleCacheTTL)
	s.cache.Wait()
}

func (s *RoleCache) Invalidate(userID, companyID uint) {
	s.cache.Del(roleCacheKey(userID, companyID))
	s.cache.Wait()
}
