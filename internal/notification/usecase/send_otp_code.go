package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/shandysiswandi/signup/internal/notification/entity"
	"github.com/shandysiswandi/signup/internal/pkg/idempotency"
)

type SendOTPCodeInput struct {
	EventID   string    `validate:"required"`
	AccountID int64     `validate:"required,gt=0"`
	Username  string    `validate:"required"`
	Email     string    `validate:"required,email"`
	Code      string    `validate:"required,numeric"`
	Purpose   string    `validate:"required,oneof=join resend"`
	ExpiresAt time.Time `validate:"required"`
}

type otpEmailData struct {
	AppName   string
	Subject   string
	Username  string
	Code      string
	Purpose   string
	ExpiresIn string
	ExpiresAt string
	Year      int
}

// SendOTPCode emails a freshly issued code once per event. A payload that can
// never be delivered returns nil so the broker drops it.
func (s *Usecase) SendOTPCode(ctx context.Context, in SendOTPCodeInput) error {
	ctx, span := s.startSpan(ctx, "SendOTPCode")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "invalid otp issued payload", "event_id", in.EventID, "error", err)
		return nil
	}

	now := s.clock.Now()
	if !now.Before(in.ExpiresAt) {
		slog.WarnContext(ctx, "otp code expired before delivery", "event_id", in.EventID, "account_id", in.AccountID, "expires_at", in.ExpiresAt)
		return nil
	}

	err := s.idemp.Exec(ctx, "notification:otp:"+in.EventID, func(ctx context.Context) error {
		email, err := s.otpEmail(in, now)
		if err != nil {
			return err
		}
		return s.sendWithRetry(ctx, email)
	}, idempotency.WithReleaseOnFailure(), idempotency.WithStateTTL(in.ExpiresAt.Sub(now)))

	switch {
	case errors.Is(err, idempotency.ErrAlreadyCompleted):
		slog.InfoContext(ctx, "otp email already sent", "event_id", in.EventID)
		return nil
	case err != nil:
		slog.ErrorContext(ctx, "failed to send otp email", "event_id", in.EventID, "account_id", in.AccountID, "error", err)
		return err
	}

	slog.InfoContext(ctx, "otp email sent", "event_id", in.EventID, "account_id", in.AccountID, "purpose", in.Purpose)
	return nil
}

func (s *Usecase) otpEmail(in SendOTPCodeInput, now time.Time) (entity.Email, error) {
	purpose := entity.Purpose(in.Purpose).Title()
	data := otpEmailData{
		AppName:   s.appName,
		Subject:   fmt.Sprintf("%s verification code (%s)", s.appName, purpose),
		Username:  in.Username,
		Code:      in.Code,
		Purpose:   purpose,
		ExpiresIn: minutesLeft(in.ExpiresAt.Sub(now)),
		ExpiresAt: in.ExpiresAt.UTC().Format(time.RFC1123),
		Year:      now.Year(),
	}

	text, html, err := render("otp_code", data)
	if err != nil {
		return entity.Email{}, fmt.Errorf("render otp email: %w", err)
	}

	return entity.Email{
		To:       in.Email,
		Subject:  data.Subject,
		TextBody: text,
		HTMLBody: html,
	}, nil
}

func minutesLeft(d time.Duration) string {
	n := int(math.Ceil(d.Minutes()))
	if n <= 1 {
		return "1 minute"
	}
	return strconv.Itoa(n) + " minutes"
}

func (s *Usecase) sendWithRetry(ctx context.Context, email entity.Email) error {
	b := retry.WithMaxRetries(s.retryAttempts-1, retry.NewExponential(s.retryBaseDelay))

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := s.repoMail.Send(ctx, email); err != nil {
			slog.WarnContext(ctx, "mail send attempt failed", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}
