package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPassword(t *testing.T) {
	tests := []struct {
		name    string
		algo    string
		want    any
		wantErr error
	}{
		{name: "DefaultIsBcrypt", algo: "", want: &Bcrypt{}},
		{name: "Bcrypt", algo: "BCRYPT", want: &Bcrypt{}},
		{name: "Argon2id", algo: " argon2id ", want: &Argon2id{}},
		{name: "Unknown", algo: "md5", wantErr: ErrUnknownAlgorithm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewPassword(PasswordConfig{Algorithm: tt.algo, BcryptCost: 4, Pepper: "p"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, h)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, h)
		})
	}
}

func TestBcrypt(t *testing.T) {
	h := NewBcrypt(4, "pepper")

	hashed, err := h.Hash("correct horse")
	require.NoError(t, err)

	assert.True(t, h.Verify(string(hashed), "correct horse"))
	assert.False(t, h.Verify(string(hashed), "wrong horse"))
	assert.False(t, NewBcrypt(4, "other").Verify(string(hashed), "correct horse"))
}

func TestBcrypt_TooLongAfterPepper(t *testing.T) {
	h := NewBcrypt(4, "change-me-pepper")

	_, err := h.Hash(strings.Repeat("a", 56))
	require.NoError(t, err)

	_, err = h.Hash(strings.Repeat("a", 57))
	assert.ErrorIs(t, err, ErrTooLong)

	_, err = NewBcrypt(4, "").Hash(strings.Repeat("é", 40))
	assert.ErrorIs(t, err, ErrTooLong)
}

func TestBcrypt_InvalidCostFallsBack(t *testing.T) {
	assert.Equal(t, 10, NewBcrypt(0, "").cost)
	assert.Equal(t, 10, NewBcrypt(99, "").cost)
}

func TestArgon2id(t *testing.T) {
	h := NewArgon2id("pepper", Argon2Params{MemoryKiB: 1024, Iterations: 1})

	hashed, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(hashed), "$argon2id$v=19$"))

	assert.True(t, h.Verify(string(hashed), "s3cret-pass"))
	assert.False(t, h.Verify(string(hashed), "s3cret-pasS"))
	assert.False(t, h.Verify("", "s3cret-pass"))
	assert.False(t, h.Verify("$bcrypt$x$y$z$w", "s3cret-pass"))
	assert.False(t, h.Verify(string(hashed), ""))
}

func TestHMACSHA256(t *testing.T) {
	h := NewHMACSHA256("server-secret")

	a, err := h.Hash("123456")
	require.NoError(t, err)
	b, err := h.Hash("123456")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.True(t, h.Verify(string(a), "123456"))
	assert.False(t, h.Verify(string(a), "123457"))
	assert.False(t, NewHMACSHA256("other").Verify(string(a), "123456"))
	assert.False(t, h.Verify("not-hex", "123456"))
	assert.False(t, h.Verify(string(a[:62]), "123456"))
}

func TestNewDigest(t *testing.T) {
	_, err := NewDigest("")
	assert.ErrorIs(t, err, ErrShortSecret)

	_, err = NewDigest(strings.Repeat("k", MinDigestSecretLength-1))
	assert.ErrorIs(t, err, ErrShortSecret)

	h, err := NewDigest(strings.Repeat("k", MinDigestSecretLength))
	require.NoError(t, err)
	assert.IsType(t, &HMACSHA256{}, h)
}

func TestArgon2id_VerifiesUnderStoredParams(t *testing.T) {
	old := NewArgon2id("pepper", Argon2Params{MemoryKiB: 1024, Iterations: 1, Parallelism: 1})
	hashed, err := old.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(hashed), "$argon2id$v=19$m=1024,t=1,p=1$"))

	current := NewArgon2id("pepper", Argon2Params{MemoryKiB: 2048, Iterations: 2})
	assert.True(t, current.Verify(string(hashed), "s3cret-pass"))
	assert.Equal(t, Argon2Params{MemoryKiB: 2048, Iterations: 2, Parallelism: 2}, current.params)
	assert.Equal(t, DefaultArgon2Params, NewArgon2id("", Argon2Params{}).params)
}
