package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/signup/internal/pkg/goerror"
)

const msgInvalidCode = "Invalid or expired code"

type VerifyOTPInput struct {
	Username string `validate:"required"`
	OTP      string `validate:"required,numeric_code"`
}

type VerifyOTPOutput struct {
	ID              int64
	Username        string
	Email           string
	IsMailConfirmed bool
	Token           string
}

func (s *Usecase) VerifyOTP(ctx context.Context, in VerifyOTPInput) (*VerifyOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyOTP")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	in.OTP = strings.TrimSpace(in.OTP)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}
	if len(in.OTP) != s.otpLength {
		return nil, goerror.NewInvalidInput(nil, "otp", fmt.Sprintf("otp must be a %d digit code", s.otpLength))
	}

	acc, err := s.repoDB.GetAccountByUsername(ctx, in.Username)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "otp submitted for unknown account", "username", in.Username)
		return nil, goerror.NewInvalidCredential(msgInvalidCode)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by username", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	ok, err := s.otp.Validate(ctx, acc.SubjectID(), in.OTP)
	if err != nil {
		slog.ErrorContext(ctx, "failed to validate otp", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		slog.WarnContext(ctx, "otp rejected", "account_id", acc.ID)
		return nil, goerror.NewInvalidCredential(msgInvalidCode)
	}

	confirmed, err := s.repoDB.MarkConfirmed(ctx, acc.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark confirmed", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	token, err := s.jwt.Generate(confirmed.ID, confirmed.Username, confirmed.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate token", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &VerifyOTPOutput{
		ID:              confirmed.ID,
		Username:        confirmed.Username,
		Email:           confirmed.Email,
		IsMailConfirmed: confirmed.IsMailConfirmed,
		Token:           token,
	}, nil
}
