package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shandysiswandi/signup/internal/pkg/instrument"
	"github.com/shandysiswandi/signup/internal/pkg/otp"
)

// OTPStore is the Postgres otp.Store backed by account_otps.
type OTPStore struct {
	db *DB
}

func NewOTPStore(conn *pgxpool.Pool, ins instrument.Instrumentation) *OTPStore {
	return &OTPStore{db: NewDB(conn, ins)}
}

func (s *OTPStore) Replace(ctx context.Context, rec otp.Record) (err error) {
	ctx, span := s.db.startSpan(ctx, "ReplaceOTP")
	defer func() { s.db.endSpan(span, err) }()

	_, err = s.db.conn.Exec(ctx, `
		INSERT INTO account_otps (subject_id, id, code_digest, issued_at, expires_at, consumed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (subject_id) DO UPDATE SET
			id = EXCLUDED.id,
			code_digest = EXCLUDED.code_digest,
			issued_at = EXCLUDED.issued_at,
			expires_at = EXCLUDED.expires_at,
			consumed_at = EXCLUDED.consumed_at`,
		rec.SubjectID, rec.ID, rec.CodeDigest, rec.IssuedAt, rec.ExpiresAt, rec.ConsumedAt,
	)
	return s.db.mapError(err)
}

func (s *OTPStore) Find(ctx context.Context, subjectID string) (_ otp.Record, err error) {
	ctx, span := s.db.startSpan(ctx, "FindOTP")
	defer func() { s.db.endSpan(span, err) }()

	rec := otp.Record{SubjectID: subjectID}
	err = s.db.conn.QueryRow(ctx,
		`SELECT id, code_digest, issued_at, expires_at, consumed_at FROM account_otps WHERE subject_id = $1`, subjectID,
	).Scan(&rec.ID, &rec.CodeDigest, &rec.IssuedAt, &rec.ExpiresAt, &rec.ConsumedAt)
	if err != nil {
		return otp.Record{}, s.db.mapError(err)
	}
	return rec, nil
}

func (s *OTPStore) Consume(ctx context.Context, subjectID, recordID string, at time.Time) (_ bool, err error) {
	ctx, span := s.db.startSpan(ctx, "ConsumeOTP")
	defer func() { s.db.endSpan(span, err) }()

	tag, err := s.db.conn.Exec(ctx, `
		UPDATE account_otps SET consumed_at = $3
		WHERE subject_id = $1 AND id = $2 AND consumed_at IS NULL AND expires_at > $3`,
		subjectID, recordID, at,
	)
	if err != nil {
		return false, s.db.mapError(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *OTPStore) Purge(ctx context.Context, before time.Time) (_ int64, err error) {
	ctx, span := s.db.startSpan(ctx, "PurgeOTP")
	defer func() { s.db.endSpan(span, err) }()

	tag, err := s.db.conn.Exec(ctx,
		`DELETE FROM account_otps WHERE expires_at <= $1 OR consumed_at IS NOT NULL`, before,
	)
	if err != nil {
		return 0, s.db.mapError(err)
	}
	return tag.RowsAffected(), nil
}
