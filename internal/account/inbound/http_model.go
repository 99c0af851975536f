package inbound

import (
	"net/http"
	"strconv"
	"time"
)

type JoinRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type JoinResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (JoinResponse) StatusCode() int {
	return http.StatusCreated
}

func (JoinResponse) Message() string {
	return "Account created. Please check your email for the verification code."
}

type VerifyOTPRequest struct {
	Username string `json:"username"`
	OTP      string `json:"otp"`
}

type VerifyOTPResponse struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	IsMailConfirmed bool   `json:"is_mail_confirmed"`
	Token           string `json:"token"`
}

func (VerifyOTPResponse) Message() string {
	return "Email confirmed"
}

type ResendOTPRequest struct {
	Username string `json:"username"`
}

type ResendOTPResponse struct{}

func (ResendOTPResponse) Message() string {
	return "A new verification code has been sent to your email."
}

type ProfileResponse struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	IsMailConfirmed bool      `json:"is_mail_confirmed"`
	CreatedAt       time.Time `json:"created_at"`
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
