package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teamspace-app/teamspace/internal/models"
)

func TestRoleCache(t *testing.T) {
	cache := NewRoleCache()

	_, ok := cache.Get(1, 1)
	assert.False(t, ok)

	cache.Set(1, 1, models.RoleAdmin)
	role, ok := cache.Get(1, 1)
	assert.True(t, ok)
	assert.Equal(t, models.RoleAdmin, role)

	// Different company, same user.
	_, ok = cache.Get(1, 2)
	assert.False(t, ok)

	cache.Invalidate(1, 1)
	_, ok = cache.Get(1, 1)
	assert.False(t, ok)
}
