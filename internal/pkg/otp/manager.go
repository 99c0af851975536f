package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/signup/internal/pkg/clock"
	"github.com/shandysiswandi/signup/internal/pkg/goerror"
	"github.com/shandysiswandi/signup/internal/pkg/hash"
	"github.com/shandysiswandi/signup/internal/pkg/instrument"
	"github.com/shandysiswandi/signup/internal/pkg/uid"
)

var (
	errStoreRequired  = errors.New("otp: store is required")
	errDigestRequired = errors.New("otp: digest is required")
)

// Config wires a Manager. Store and Digest are required; the rest default to
// a 10 minute TTL, a 6-digit numeric generator, the system clock, UUIDv7
// record ids and noop instrumentation.
type Config struct {
	TTL        time.Duration
	Store      Store
	Generator  Generator
	Digest     hash.Hash
	Clock      clock.Clocker
	ID         uid.StringID
	Instrument instrument.Instrumentation
}

// Manager runs the code lifecycle for subjects: issue, validate once,
// regenerate and purge.
type Manager struct {
	ttl    time.Duration
	store  Store
	gen    Generator
	digest hash.Hash
	clock  clock.Clocker
	id     uid.StringID
	ins    instrument.Instrumentation
	locks  *keyLock
}

// NewManager validates cfg and fills its defaults.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Store == nil {
		return nil, errStoreRequired
	}
	if cfg.Digest == nil {
		return nil, errDigestRequired
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Generator == nil {
		gen, err := NewNumericGenerator(DefaultLength)
		if err != nil {
			return nil, err
		}
		cfg.Generator = gen
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.ID == nil {
		cfg.ID = uid.NewUUID()
	}
	if cfg.Instrument == nil {
		cfg.Instrument = instrument.NewNoop()
	}

	return &Manager{
		ttl:    cfg.TTL,
		store:  cfg.Store,
		gen:    cfg.Generator,
		digest: cfg.Digest,
		clock:  cfg.Clock,
		id:     cfg.ID,
		ins:    cfg.Instrument,
		locks:  newKeyLock(),
	}, nil
}

// TTL is how long an issued code stays valid.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a new code for subjectID, replacing any previous one, and
// returns it in plaintext. Only the digest is stored.
func (m *Manager) Issue(ctx context.Context, subjectID string) (issued Issued, err error) {
	ctx, span := m.startSpan(ctx, "Issue", subjectID)
	defer func() { m.endSpan(span, err) }()

	return m.issue(ctx, subjectID)
}

// Regenerate is Issue triggered by the subject asking for a new code.
func (m *Manager) Regenerate(ctx context.Context, subjectID string) (issued Issued, err error) {
	ctx, span := m.startSpan(ctx, "Regenerate", subjectID)
	defer func() { m.endSpan(span, err) }()

	return m.issue(ctx, subjectID)
}

func (m *Manager) issue(ctx context.Context, subjectID string) (Issued, error) {
	if subjectID == "" {
		return Issued{}, ErrSubjectRequired
	}

	code, err := m.gen.Generate()
	if err != nil {
		return Issued{}, err
	}

	digest, err := m.digest.Hash(code)
	if err != nil {
		return Issued{}, fmt.Errorf("otp: digest code: %w", err)
	}

	unlock := m.locks.Lock(subjectID)
	defer unlock()

	now := m.clock.Now()
	rec := Record{
		ID:         m.id.Generate(),
		SubjectID:  subjectID,
		CodeDigest: string(digest),
		IssuedAt:   now,
		ExpiresAt:  now.Add(m.ttl),
	}
	if err := m.store.Replace(ctx, rec); err != nil {
		return Issued{}, fmt.Errorf("otp: replace record: %w", err)
	}

	return Issued{Code: code, ExpiresAt: rec.ExpiresAt}, nil
}

// Validate reports whether submitted is the active code of subjectID and, if
// so, consumes it. Every kind of rejection is (false, nil); errors are
// reserved for store failures.
func (m *Manager) Validate(ctx context.Context, subjectID, submitted string) (ok bool, err error) {
	ctx, span := m.startSpan(ctx, "Validate", subjectID)
	defer func() {
		span.SetAttributes(attribute.Bool("otp.valid", ok))
		m.endSpan(span, err)
	}()

	if subjectID == "" || submitted == "" {
		return false, nil
	}

	unlock := m.locks.Lock(subjectID)
	defer unlock()

	rec, err := m.store.Find(ctx, subjectID)
	if errors.Is(err, goerror.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("otp: find record: %w", err)
	}

	now := m.clock.Now()
	if !rec.Active(now) {
		return false, nil
	}
	if !m.digest.Verify(rec.CodeDigest, submitted) {
		return false, nil
	}

	consumed, err := m.store.Consume(ctx, subjectID, rec.ID, now)
	if err != nil {
		return false, fmt.Errorf("otp: consume record: %w", err)
	}
	return consumed, nil
}

// Purge removes expired and consumed records.
func (m *Manager) Purge(ctx context.Context) (n int64, err error) {
	ctx, span := m.startSpan(ctx, "Purge", "")
	defer func() {
		span.SetAttributes(attribute.Int64("otp.purged", n))
		m.endSpan(span, err)
	}()

	n, err = m.store.Purge(ctx, m.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("otp: purge: %w", err)
	}
	return n, nil
}

func (m *Manager) startSpan(ctx context.Context, name, subjectID string) (context.Context, trace.Span) {
	ctx, span := m.ins.Tracer("otp.manager").Start(ctx, name)
	if subjectID != "" {
		span.SetAttributes(attribute.String("otp.subject_id", subjectID))
	}
	return ctx, span
}

func (m *Manager) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
