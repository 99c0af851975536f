package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/signup/internal/account/entity"
	"github.com/shandysiswandi/signup/internal/pkg/goerror"
	"github.com/shandysiswandi/signup/internal/pkg/hash"
	"github.com/shandysiswandi/signup/internal/shared/event"
)

type JoinInput struct {
	Username string `validate:"required,username"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,password"`
}

func (s *Usecase) Join(ctx context.Context, in JoinInput) (*entity.Account, error) {
	ctx, span := s.startSpan(ctx, "Join")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	taken, err := s.repoDB.ExistsWithEmail(ctx, in.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo check email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}
	if taken {
		return nil, goerror.NewBusiness("Email already taken", goerror.CodeConflict)
	}

	taken, err = s.repoDB.ExistsWithUsername(ctx, in.Username)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo check username", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}
	if taken {
		return nil, goerror.NewBusiness("Username already taken", goerror.CodeConflict)
	}

	hashed, err := s.password.Hash(in.Password)
	if errors.Is(err, hash.ErrTooLong) {
		return nil, goerror.NewInvalidInput(nil, "password", "password is too long")
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	acc, err := s.repoDB.CreateAccount(ctx, entity.NewAccount{
		ID:           s.uid.Generate(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hashed),
	})
	if errors.Is(err, goerror.ErrConflict) {
		return nil, goerror.NewBusiness("Username or email already taken", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create account", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	issued, err := s.otp.Issue(ctx, acc.SubjectID())
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue otp", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.dispatchCode(ctx, acc, issued, event.OTPPurposeJoin)

	return acc, nil
}
