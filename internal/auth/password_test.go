package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/order-manager/internal/auth"
)

func TestPasswordHashAndCompare(t *testing.T) {
	hash, err := auth.HashPassword("good-pw", 4)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotContains(t, hash, "good-pw")

	assert.NoError(t, auth.ComparePassword(hash, "good-pw"))
	assert.Error(t, auth.ComparePassword(hash, "bad-pw"))
}
