package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashers_SaltedAndVerifiable(t *testing.T) {
	hashers := map[string]Hasher{
		"bcrypt":   NewBcryptHasher(bcrypt.MinCost),
		"argon2id": NewArgon2Hasher(),
	}

	for name, h := range hashers {
		t.Run(name, func(t *testing.T) {
			first, err := h.Hash("secret1")
			require.NoError(t, err)
			second, err := h.Hash("secret1")
			require.NoError(t, err)

			assert.NotEqual(t, "secret1", first)
			assert.NotEqual(t, first, second, "identical input must hash differently")

			for _, hash := range []string{first, second} {
				ok, err := h.Verify("secret1", hash)
				require.NoError(t, err)
				assert.True(t, ok)
			}

			ok, err := h.Verify("wrong", first)
			assert.NoError(t, err, "a wrong password is not an error")
			assert.False(t, ok)
		})
	}
}

func TestHashers_MalformedHash(t *testing.T) {
	for _, h := range []Hasher{NewBcryptHasher(bcrypt.MinCost), NewArgon2Hasher()} {
		ok, err := h.Verify("secret1", "not-a-hash")
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrMalformedHash)
	}

	bad := []string{
		"$argon2id$v=18$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=3,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=4$!!!$aGFzaA",
		"$argon2i$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
	}
	for _, hash := range bad {
		_, err := NewArgon2Hasher().Verify("secret1", hash)
		assert.ErrorIs(t, err, ErrMalformedHash, hash)
	}
}

func TestBcryptHasher_UsesConfiguredCost(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost + 1)
	hash, err := h.Hash("secret1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}

func TestNewHasher(t *testing.T) {
	h, err := NewHasher("bcrypt")
	require.NoError(t, err)
	assert.IsType(t, &BcryptHasher{}, h)
	assert.Equal(t, DefaultBcryptCost, h.(*BcryptHasher).cost)

	h, err = NewHasher("argon2id")
	require.NoError(t, err)
	assert.IsType(t, &Argon2Hasher{}, h)

	_, err = NewHasher("md5")
	assert.Error(t, err)
}

func TestHashers_PasswordByteLimit(t *testing.T) {
	// 40 runes, 80 bytes.
	multibyte := strings.Repeat("é", 40)

	_, err := NewBcryptHasher(bcrypt.MinCost).Hash(multibyte)
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	exact := strings.Repeat("a", MaxBcryptPasswordBytes)
	_, err = NewBcryptHasher(bcrypt.MinCost).Hash(exact)
	assert.NoError(t, err)

	hash, err := NewArgon2Hasher().Hash(multibyte)
	require.NoError(t, err, "argon2id has no byte limit")
	ok, err := NewArgon2Hasher().Verify(multibyte, hash)
	require.NoError(t, err)
	assert.True(t, ok)
}
