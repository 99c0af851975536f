package hash

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownAlgorithm is returned for a password algorithm name that is not supported.
	ErrUnknownAlgorithm = errors.New("hash: unknown algorithm")
	// ErrTooLong is returned when the input exceeds what the algorithm can hash.
	ErrTooLong = errors.New("hash: input too long")
	// ErrShortSecret is returned by NewDigest for a secret under MinDigestSecretLength bytes.
	ErrShortSecret = errors.New("hash: digest secret too short")
)

// MinDigestSecretLength is the shortest HMAC key NewDigest accepts.
const MinDigestSecretLength = 16

// Algorithm names accepted by NewPassword.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// Hash turns a secret into a storable digest and checks candidates against it.
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}

// PasswordConfig selects and tunes the password hasher.
type PasswordConfig struct {
	Algorithm  string
	BcryptCost int
	Argon2     Argon2Params
	Pepper     string
}

// NewPassword returns the password hasher named by cfg.Algorithm.
func NewPassword(cfg PasswordConfig) (Hash, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Algorithm)) {
	case "", AlgorithmBcrypt:
		return NewBcrypt(cfg.BcryptCost, cfg.Pepper), nil
	case AlgorithmArgon2id:
		return NewArgon2id(cfg.Pepper, cfg.Argon2), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, cfg.Algorithm)
	}
}

// NewDigest returns the keyed digest used for one-time codes. An empty or
// short secret would leave 6-digit codes open to offline brute force.
func NewDigest(secret string) (Hash, error) {
	if len(secret) < MinDigestSecretLength {
		return nil, ErrShortSecret
	}
	return NewHMACSHA256(secret), nil
}
