package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/signup/internal/account/entity"
	"github.com/shandysiswandi/signup/internal/pkg/goerror"
	"github.com/shandysiswandi/signup/internal/shared/event"
)

func TestUsecase_ResendOTP(t *testing.T) {
	t.Run("RegeneratesAndDispatches", func(t *testing.T) {
		// Arrange
		f := newFixture(t, entity.Account{ID: 7, Username: "ayu_w", Email: "ayu@example.com"})
		f.otp.code = "550119"
		f.otp.expiresAt = now.Add(9 * time.Minute)

		// Act
		err := f.uc.ResendOTP(context.Background(), ResendOTPInput{Username: "ayu_w"})
		f.drain(t)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []string{"7"}, f.otp.regenerated)
		sent := f.msg.deliveries()
		require.Len(t, sent, 1)
		assert.Equal(t, "550119", sent[0].Code)
		assert.Equal(t, event.OTPPurposeResend, sent[0].Purpose)
		assert.Equal(t, now.Add(9*time.Minute), sent[0].ExpiresAt)
	})

	t.Run("UnknownAccount", func(t *testing.T) {
		f := newFixture(t)

		err := f.uc.ResendOTP(context.Background(), ResendOTPInput{Username: "ghost"})

		assert.True(t, goerror.IsCode(err, goerror.CodeNotFound))
		assert.Empty(t, f.otp.regenerated)
	})

	t.Run("AlreadyConfirmed", func(t *testing.T) {
		f := newFixture(t, entity.Account{ID: 7, Username: "ayu_w", Email: "ayu@example.com", IsMailConfirmed: true})

		err := f.uc.ResendOTP(context.Background(), ResendOTPInput{Username: "ayu_w"})

		assert.True(t, goerror.IsCode(err, goerror.CodeConflict))
		assert.Empty(t, f.otp.regenerated)
	})

	t.Run("UsernameRequired", func(t *testing.T) {
		f := newFixture(t)

		err := f.uc.ResendOTP(context.Background(), ResendOTPInput{Username: "   "})

		assert.True(t, goerror.IsCode(err, goerror.CodeInvalidInput))
	})
}
