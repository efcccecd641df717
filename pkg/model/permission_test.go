package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionLevelOrder(t *testing.T) {
	assert.True(t, PermissionRead < PermissionWrite)
	assert.True(t, PermissionWrite < PermissionDelete)
}

func TestSatisfies(t *testing.T) {
	assert.True(t, PermissionDelete.Satisfies(PermissionRead))
	assert.True(t, PermissionDelete.Satisfies(PermissionDelete))
	assert.True(t, PermissionWrite.Satisfies(PermissionRead))
	assert.False(t, PermissionRead.Satisfies(PermissionWrite))
	assert.False(t, PermissionWrite.Satisfies(PermissionDelete))
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, PermissionRead, Min(PermissionRead, PermissionDelete))
	assert.Equal(t, PermissionRead, Min(PermissionDelete, PermissionRead))
	assert.Equal(t, PermissionDelete, Max(PermissionRead, PermissionDelete))
	assert.Equal(t, PermissionWrite, Max(PermissionWrite, PermissionWrite))
}

func TestPermissionLevelString(t *testing.T) {
	level, err := PermissionLevelString("WRITE")
	require.NoError(t, err)
	assert.Equal(t, PermissionWrite, level)

	_, err = PermissionLevelString("ADMIN")
	assert.Error(t, err)
}

func TestPermissionLevelSQL(t *testing.T) {
	v, err := PermissionDelete.Value()
	require.NoError(t, err)
	assert.Equal(t, "DELETE", v)

	var level PermissionLevel
	require.NoError(t, level.Scan("WRITE"))
	assert.Equal(t, PermissionWrite, level)

	require.NoError(t, level.Scan([]byte("READ")))
	assert.Equal(t, PermissionRead, level)

	assert.Error(t, level.Scan("OWNER"))
}
