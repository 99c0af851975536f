package otp

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSubjectRequired is returned when the subject id is empty.
	ErrSubjectRequired = errors.New("otp: subject id is required")
	// ErrInvalidLength is returned for a code length outside MinLength..MaxLength.
	ErrInvalidLength = errors.New("otp: invalid code length")
)

// Code length bounds.
const (
	MinLength     = 4
	MaxLength     = 10
	DefaultLength = 6
	DefaultTTL    = 10 * time.Minute
)

// Record is the stored state of one issued code.
type Record struct {
	// ID changes on every issue so a conditional consume can tell a replaced
	// record from the one it read.
	ID         string
	SubjectID  string
	CodeDigest string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	ConsumedAt *time.Time
}

// Issued is a freshly issued code in plaintext and the moment its record
// expires.
type Issued struct {
	Code      string
	ExpiresAt time.Time
}

// Active reports whether the record can still be consumed at now.
func (r Record) Active(now time.Time) bool {
	return r.ConsumedAt == nil && now.Before(r.ExpiresAt)
}

// Store persists at most one record per subject.
type Store interface {
	// Replace stores rec, dropping any previous record of rec.SubjectID.
	Replace(ctx context.Context, rec Record) error
	// Find returns goerror.ErrNotFound when the subject has no record.
	Find(ctx context.Context, subjectID string) (Record, error)
	// Consume marks the record consumed only if it is still the record
	// recordID, unconsumed and unexpired at at. It reports whether it did.
	Consume(ctx context.Context, subjectID, recordID string, at time.Time) (bool, error)
	// Purge deletes records that expired at or before before, or were
	// consumed, and reports how many it removed.
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// Generator produces plaintext codes.
type Generator interface {
	Generate() (string, error)
}
