package inbound

import (
	"context"

	"github.com/shandysiswandi/signup/internal/notification/usecase"
)

type uc interface {
	SendOTPCode(ctx context.Context, in usecase.SendOTPCodeInput) error
}
