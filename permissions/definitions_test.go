package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermissionKeys(t *testing.T) {
	keys := GetAllPermissionKeys()
	assert.Contains(t, keys, CandidateDeathRecord)
	assert.Contains(t, keys, CandidateDeathSync)
	assert.True(t, IsValidPermissionKey(PermissionsView))
	assert.False(t, IsValidPermissionKey("album.create"))

	keys[0] = "mutated"
	assert.NotEqual(t, "mutated", GetAllPermissionKeys()[0])
}
