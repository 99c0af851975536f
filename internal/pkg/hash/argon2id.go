package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argon2SaltLength = 16
	argon2KeyLength  = 32
	// argon2MaxParallel bounds concurrent derivations so a burst of joins
	// cannot allocate MemoryKiB per request without limit.
	argon2MaxParallel = 2
)

// Argon2Params tunes Argon2id. Zero fields take the defaults of
// DefaultArgon2Params.
type Argon2Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

// DefaultArgon2Params is 32 MiB, three passes, two lanes.
var DefaultArgon2Params = Argon2Params{MemoryKiB: 32 * 1024, Iterations: 3, Parallelism: 2}

func (p Argon2Params) withDefaults() Argon2Params {
	if p.MemoryKiB == 0 {
		p.MemoryKiB = DefaultArgon2Params.MemoryKiB
	}
	if p.Iterations == 0 {
		p.Iterations = DefaultArgon2Params.Iterations
	}
	if p.Parallelism == 0 {
		p.Parallelism = DefaultArgon2Params.Parallelism
	}
	return p
}

// Argon2id implements Hash with the PHC string format
// "$argon2id$v=19$m=<KiB>,t=<passes>,p=<lanes>$<salt>$<key>".
type Argon2id struct {
	params Argon2Params
	pepper string
	sema   chan struct{}
}

// NewArgon2id returns an Argon2id hasher. The pepper is appended to every
// input before derivation.
func NewArgon2id(pepper string, params Argon2Params) *Argon2id {
	return &Argon2id{
		params: params.withDefaults(),
		pepper: pepper,
		sema:   make(chan struct{}, argon2MaxParallel),
	}
}

func (a *Argon2id) derive(str string, salt []byte, p Argon2Params, keyLen uint32) []byte {
	a.sema <- struct{}{}
	defer func() { <-a.sema }()
	return argon2.IDKey([]byte(str+a.pepper), salt, p.Iterations, p.MemoryKiB, p.Parallelism, keyLen)
}

// Hash derives a key from str with a fresh random salt.
func (a *Argon2id) Hash(str string) ([]byte, error) {
	salt := make([]byte, argon2SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("hash: argon2id salt: %w", err)
	}

	key := a.derive(str, salt, a.params, argon2KeyLength)

	return fmt.Appendf(nil, "$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, a.params.MemoryKiB, a.params.Iterations, a.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify re-derives str with the parameters stored in hashed, so digests
// made under older parameters keep verifying.
func (a *Argon2id) Verify(hashed, str string) bool {
	if hashed == "" || str == "" {
		return false
	}

	var (
		version int
		p       Argon2Params
		tail    string
	)
	if _, err := fmt.Sscanf(hashed, "$argon2id$v=%d$m=%d,t=%d,p=%d$%s",
		&version, &p.MemoryKiB, &p.Iterations, &p.Parallelism, &tail); err != nil || version != argon2.Version {
		return false
	}
	if p.MemoryKiB == 0 || p.Iterations == 0 || p.Parallelism == 0 {
		return false
	}

	saltB64, keyB64, ok := strings.Cut(tail, "$")
	if !ok {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(saltB64)
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(keyB64)
	if err != nil || len(want) == 0 {
		return false
	}

	got := a.derive(str, salt, p, uint32(len(want)))
	return subtle.ConstantTimeCompare(want, got) == 1
}
