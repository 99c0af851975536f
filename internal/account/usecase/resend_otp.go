package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/signup/internal/pkg/goerror"
	"github.com/shandysiswandi/signup/internal/shared/event"
)

type ResendOTPInput struct {
	Username string `validate:"required"`
}

func (s *Usecase) ResendOTP(ctx context.Context, in ResendOTPInput) error {
	ctx, span := s.startSpan(ctx, "ResendOTP")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	acc, err := s.repoDB.GetAccountByUsername(ctx, in.Username)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("Account not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by username", "username", in.Username, "error", err)
		return goerror.NewServer(err)
	}

	if acc.IsMailConfirmed {
		return goerror.NewBusiness("Email already confirmed", goerror.CodeConflict)
	}

	issued, err := s.otp.Regenerate(ctx, acc.SubjectID())
	if err != nil {
		slog.ErrorContext(ctx, "failed to regenerate otp", "account_id", acc.ID, "error", err)
		return goerror.NewServer(err)
	}

	s.dispatchCode(ctx, acc, issued, event.OTPPurposeResend)

	return nil
}
