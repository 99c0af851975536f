package inbound

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/signup/internal/account/entity"
	"github.com/shandysiswandi/signup/internal/account/usecase"
	"github.com/shandysiswandi/signup/internal/pkg/router"
)

type uc interface {
	Join(ctx context.Context, in usecase.JoinInput) (*entity.Account, error)
	VerifyOTP(ctx context.Context, in usecase.VerifyOTPInput) (*usecase.VerifyOTPOutput, error)
	ResendOTP(ctx context.Context, in usecase.ResendOTPInput) error
	Profile(ctx context.Context) (*entity.Account, error)
}

// RegisterHTTPEndpoint mounts the account routes. otpLimiter guards both OTP
// routes and may be nil.
func RegisterHTTPEndpoint(r *router.Router, uc uc, otpLimiter router.Middleware) {
	end := &HTTPEndpoint{uc: uc}

	var otpMws []router.Middleware
	if otpLimiter != nil {
		otpMws = append(otpMws, otpLimiter)
	}

	r.Public(http.MethodPost, "/api/v1/users/join")
	r.Public(http.MethodPost, "/api/v1/users/otp")
	r.Public(http.MethodPut, "/api/v1/users/otp")

	r.POST("/api/v1/users/join", end.Join)
	r.POST("/api/v1/users/otp", end.VerifyOTP, otpMws...)
	r.PUT("/api/v1/users/otp", end.ResendOTP, otpMws...)

	r.GET("/api/v1/users/me", end.Profile) // need authenticated
}
