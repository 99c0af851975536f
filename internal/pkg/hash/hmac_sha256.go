package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSHA256 is a keyed digest for short secrets such as one-time codes.
//
// Unlike the password hashers it is deterministic, which lets a store look a
// digest up, and fast, which is fine because the codes expire in minutes.
// Use NewDigest to get one with a checked secret.
type HMACSHA256 struct {
	key []byte
}

// NewHMACSHA256 keys the digest with secret as is.
func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{key: []byte(secret)}
}

func (s *HMACSHA256) mac(str string) []byte {
	m := hmac.New(sha256.New, s.key)
	m.Write([]byte(str))
	return m.Sum(nil)
}

// Hash returns the lower-case hex MAC of str.
func (s *HMACSHA256) Hash(str string) ([]byte, error) {
	return hex.AppendEncode(nil, s.mac(str)), nil
}

// Verify decodes hashed and compares the MACs in constant time. A value that
// is not hex never matches.
func (s *HMACSHA256) Verify(hashed, str string) bool {
	want, err := hex.DecodeString(hashed)
	if err != nil {
		return false
	}
	return hmac.Equal(want, s.mac(str))
}
