package event

import "time"

const AccountOTPIssuedDestination string = "account.otp_issued"
const AccountOTPIssuedConsumerNotification string = "account_otp_issued_notification"

// OTP purposes.
const (
	OTPPurposeJoin   string = "join"
	OTPPurposeResend string = "resend"
)

type OTPIssuedMessage struct {
	EventID   string    `json:"event_id" validate:"required"`
	AccountID int64     `json:"account_id" validate:"required"`
	Username  string    `json:"username" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	Code      string    `json:"code" validate:"required,numeric"`
	Purpose   string    `json:"purpose" validate:"required,oneof=join resend"`
	ExpiresAt time.Time `json:"expires_at" validate:"required"`
}
