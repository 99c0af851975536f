package inbound

import (
	"github.com/shandysiswandi/signup/internal/account/usecase"
	"github.com/shandysiswandi/signup/internal/pkg/router"
)

// HTTPEndpoint exposes the sign-up and email confirmation handlers.
type HTTPEndpoint struct {
	uc uc
}

// Join registers an account and sends a verification code to its email.
// @Summary Create account
// @Description Creates an unconfirmed account and emails a one-time code. Accepts JSON or form bodies.
// @Tags Account
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body JoinRequest true "Join payload"
// @Success 201 {object} router.successResponse{data=JoinResponse} "Account created"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 409 {object} router.errorResponse "Email or username already taken"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/users/join [post]
func (h *HTTPEndpoint) Join(r *router.Request) (any, error) {
	var req JoinRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	acc, err := h.uc.Join(r.Context(), usecase.JoinInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return JoinResponse{
		ID:       formatID(acc.ID),
		Username: acc.Username,
		Email:    acc.Email,
	}, nil
}

// VerifyOTP confirms the account email with the one-time code.
// @Summary Confirm email
// @Description Consumes the one-time code, confirms the email and returns an access token.
// @Tags Account
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body VerifyOTPRequest true "Verification payload"
// @Success 200 {object} router.successResponse{data=VerifyOTPResponse} "Email confirmed"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid or expired code"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/users/otp [post]
func (h *HTTPEndpoint) VerifyOTP(r *router.Request) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyOTP(r.Context(), usecase.VerifyOTPInput{
		Username: req.Username,
		OTP:      req.OTP,
	})
	if err != nil {
		return nil, err
	}

	return VerifyOTPResponse{
		ID:              formatID(resp.ID),
		Username:        resp.Username,
		Email:           resp.Email,
		IsMailConfirmed: resp.IsMailConfirmed,
		Token:           resp.Token,
	}, nil
}

// ResendOTP replaces the pending code with a new one.
// @Summary Resend code
// @Description Invalidates the previous code and emails a new one.
// @Tags Account
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body ResendOTPRequest true "Resend payload"
// @Success 200 {object} router.successResponse{data=ResendOTPResponse} "Code sent"
// @Failure 404 {object} router.errorResponse "Account not found"
// @Failure 409 {object} router.errorResponse "Email already confirmed"
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Router /api/v1/users/otp [put]
func (h *HTTPEndpoint) ResendOTP(r *router.Request) (any, error) {
	var req ResendOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.ResendOTP(r.Context(), usecase.ResendOTPInput{Username: req.Username}); err != nil {
		return nil, err
	}

	return ResendOTPResponse{}, nil
}

// Profile returns the authenticated account.
// @Summary Current account
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=ProfileResponse} "Account"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Router /api/v1/users/me [get]
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	acc, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return ProfileResponse{
		ID:              formatID(acc.ID),
		Username:        acc.Username,
		Email:           acc.Email,
		IsMailConfirmed: acc.IsMailConfirmed,
		CreatedAt:       acc.CreatedAt,
	}, nil
}
