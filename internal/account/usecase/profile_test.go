package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/signup/internal/account/entity"
	"github.com/shandysiswandi/signup/internal/pkg/goerror"
	"github.com/shandysiswandi/signup/internal/pkg/jwt"
)

func TestUsecase_Profile(t *testing.T) {
	f := newFixture(t, entity.Account{ID: 7, Username: "ayu_w", Email: "ayu@example.com"})

	t.Run("FromClaims", func(t *testing.T) {
		ctx := jwt.SetAuth(context.Background(), jwt.Claims{AccountID: 7})

		acc, err := f.uc.Profile(ctx)

		require.NoError(t, err)
		assert.Equal(t, "ayu_w", acc.Username)
	})

	t.Run("NoClaims", func(t *testing.T) {
		_, err := f.uc.Profile(context.Background())

		assert.True(t, goerror.IsCode(err, goerror.CodeUnauthorized))
	})

	t.Run("DeletedAccount", func(t *testing.T) {
		ctx := jwt.SetAuth(context.Background(), jwt.Claims{AccountID: 99})

		_, err := f.uc.Profile(ctx)

		assert.True(t, goerror.IsCode(err, goerror.CodeNotFound))
	})
}
