package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/signup/internal/account/entity"
	"github.com/shandysiswandi/signup/internal/pkg/goerror"
	"github.com/shandysiswandi/signup/internal/pkg/jwt"
)

func (s *Usecase) Profile(ctx context.Context) (*entity.Account, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewInvalidCredential("Unauthorized")
	}

	acc, err := s.repoDB.GetAccountByID(ctx, clm.AccountID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Account not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by id", "account_id", clm.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return acc, nil
}
