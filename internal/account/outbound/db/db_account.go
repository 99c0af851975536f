package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/shandysiswandi/signup/internal/account/entity"
)

const accountColumns = `id, username, email, password_hash, is_mail_confirmed, created_at, updated_at`

func scanAccount(row pgx.Row) (*entity.Account, error) {
	var a entity.Account
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.IsMailConfirmed, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *DB) CreateAccount(ctx context.Context, in entity.NewAccount) (_ *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "CreateAccount")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx,
		`INSERT INTO accounts (id, username, email, password_hash) VALUES ($1, $2, $3, $4) RETURNING `+accountColumns,
		in.ID, in.Username, in.Email, in.PasswordHash,
	)

	acc, err := scanAccount(row)
	if err != nil {
		return nil, s.mapError(err)
	}
	return acc, nil
}

func (s *DB) ExistsWithEmail(ctx context.Context, email string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ExistsWithEmail")
	defer func() { s.endSpan(span, err) }()

	var exists bool
	err = s.conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`, email).Scan(&exists)
	return exists, s.mapError(err)
}

func (s *DB) ExistsWithUsername(ctx context.Context, username string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ExistsWithUsername")
	defer func() { s.endSpan(span, err) }()

	var exists bool
	err = s.conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)`, username).Scan(&exists)
	return exists, s.mapError(err)
}

func (s *DB) GetAccountByUsername(ctx context.Context, username string) (_ *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountByUsername")
	defer func() { s.endSpan(span, err) }()

	acc, err := scanAccount(s.conn.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username))
	if err != nil {
		return nil, s.mapError(err)
	}
	return acc, nil
}

func (s *DB) GetAccountByID(ctx context.Context, id int64) (_ *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountByID")
	defer func() { s.endSpan(span, err) }()

	acc, err := scanAccount(s.conn.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err != nil {
		return nil, s.mapError(err)
	}
	return acc, nil
}

func (s *DB) MarkConfirmed(ctx context.Context, id int64) (_ *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "MarkConfirmed")
	defer func() { s.endSpan(span, err) }()

	acc, err := scanAccount(s.conn.QueryRow(ctx,
		`UPDATE accounts SET is_mail_confirmed = TRUE, updated_at = NOW() WHERE id = $1 RETURNING `+accountColumns, id,
	))
	if err != nil {
		return nil, s.mapError(err)
	}
	return acc, nil
}
