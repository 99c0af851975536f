package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/signup/internal/account/entity"
	"github.com/shandysiswandi/signup/internal/pkg/goerror"
)

func TestUsecase_VerifyOTP(t *testing.T) {
	ayu := entity.Account{ID: 7, Username: "ayu_w", Email: "ayu@example.com"}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := newFixture(t, ayu)

		// Act
		out, err := f.uc.VerifyOTP(context.Background(), VerifyOTPInput{Username: "ayu_w", OTP: "482913"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(7), out.ID)
		assert.Equal(t, "ayu_w", out.Username)
		assert.Equal(t, "ayu@example.com", out.Email)
		assert.True(t, out.IsMailConfirmed)
		assert.Equal(t, []string{"7:482913"}, f.otp.validated)

		clm, err := f.jwt.Verify(out.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(7), clm.AccountID)
		assert.Equal(t, "ayu_w", clm.Username)
	})

	t.Run("RejectedCodeIsUniform", func(t *testing.T) {
		f := newFixture(t, ayu)
		f.otp.valid = false

		_, errRejected := f.uc.VerifyOTP(context.Background(), VerifyOTPInput{Username: "ayu_w", OTP: "000000"})
		_, errUnknown := f.uc.VerifyOTP(context.Background(), VerifyOTPInput{Username: "ghost", OTP: "000000"})

		for _, err := range []error{errRejected, errUnknown} {
			var gerr *goerror.Error
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, goerror.CodeUnauthorized, gerr.Code())
			assert.Equal(t, "Invalid or expired code", gerr.Msg())
		}

		acc, err := f.db.GetAccountByID(context.Background(), 7)
		require.NoError(t, err)
		assert.False(t, acc.IsMailConfirmed)
	})

	t.Run("MalformedCode", func(t *testing.T) {
		f := newFixture(t, ayu)

		for _, code := range []string{"", "12345", "1234567", "12a456"} {
			_, err := f.uc.VerifyOTP(context.Background(), VerifyOTPInput{Username: "ayu_w", OTP: code})
			assert.True(t, goerror.IsCode(err, goerror.CodeInvalidInput), code)
		}
		assert.Empty(t, f.otp.validated)
	})

	t.Run("ManagerFailure", func(t *testing.T) {
		f := newFixture(t, ayu)
		f.otp.err = errors.New("store down")

		_, err := f.uc.VerifyOTP(context.Background(), VerifyOTPInput{Username: "ayu_w", OTP: "482913"})

		assert.True(t, goerror.IsCode(err, goerror.CodeInternal))
	})

	t.Run("MarkConfirmedFailure", func(t *testing.T) {
		f := newFixture(t, ayu)
		f.db.errMark = errors.New("db down")

		_, err := f.uc.VerifyOTP(context.Background(), VerifyOTPInput{Username: "ayu_w", OTP: "482913"})

		assert.True(t, goerror.IsCode(err, goerror.CodeInternal))
	})
}
