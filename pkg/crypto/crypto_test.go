package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashWithCost(t *testing.T) {
	hash, err := HashWithCost("123456", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, ValidatePassword("123456", hash))
	assert.False(t, ValidatePassword("654321", hash))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestHashWithCost_OutOfRangeUsesDefault(t *testing.T) {
	hash, err := HashWithCost("secret", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
