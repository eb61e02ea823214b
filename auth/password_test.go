package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_And_Compare(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("xyz")
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	ok, err := ComparePassword("xyz", hash)
	req.NoError(err)
	req.True(ok)

	ok, err = ComparePassword("abc", hash)
	req.NoError(err)
	req.False(ok)
}

func TestHashPassword_Salts_Are_Unique(t *testing.T) {
	req := require.New(t)

	first, err := HashPassword("xyz")
	req.NoError(err)
	second, err := HashPassword("xyz")
	req.NoError(err)

	req.NotEqual(first, second)
}

func TestComparePassword_Rejects_Garbage_Hash(t *testing.T) {
	req := require.New(t)

	_, err := ComparePassword("xyz", "not-a-hash")
	req.Error(err)
}
