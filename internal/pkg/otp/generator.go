package otp

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

func checkLength(length int) error {
	if length < MinLength || length > MaxLength {
		return fmt.Errorf("%w: %d (allowed %d-%d)", ErrInvalidLength, length, MinLength, MaxLength)
	}
	return nil
}

// NumericGenerator draws uniform decimal codes from crypto/rand.
type NumericGenerator struct {
	length int
	limit  *big.Int
}

// NewNumericGenerator returns a generator of length-digit codes.
func NewNumericGenerator(length int) (*NumericGenerator, error) {
	if err := checkLength(length); err != nil {
		return nil, err
	}

	return &NumericGenerator{
		length: length,
		limit:  new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil),
	}, nil
}

// Generate returns a zero-padded code.
func (g *NumericGenerator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, g.limit)
	if err != nil {
		return "", fmt.Errorf("otp: read random: %w", err)
	}
	return fmt.Sprintf("%0*d", g.length, n.Int64()), nil
}

// HOTPGenerator derives each code with RFC 4226 from a fresh random secret
// and counter. Nothing about the secret is kept; validation compares digests.
type HOTPGenerator struct {
	digits otp.Digits
}

// NewHOTPGenerator returns a generator of digits-long HOTP codes.
func NewHOTPGenerator(digits int) (*HOTPGenerator, error) {
	if err := checkLength(digits); err != nil {
		return nil, err
	}
	return &HOTPGenerator{digits: otp.Digits(digits)}, nil
}

// Generate returns a zero-padded code.
func (g *HOTPGenerator) Generate() (string, error) {
	buf := make([]byte, 28)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("otp: read random: %w", err)
	}

	secret := base32.StdEncoding.EncodeToString(buf[:20])
	counter := binary.BigEndian.Uint64(buf[20:])

	code, err := hotp.GenerateCodeCustom(secret, counter, hotp.ValidateOpts{
		Digits:    g.digits,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("otp: hotp: %w", err)
	}
	return code, nil
}
