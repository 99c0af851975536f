package usecase

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/signup/internal/account/entity"
	"github.com/shandysiswandi/signup/internal/pkg/config"
	"github.com/shandysiswandi/signup/internal/pkg/goroutine"
	"github.com/shandysiswandi/signup/internal/pkg/hash"
	"github.com/shandysiswandi/signup/internal/pkg/instrument"
	"github.com/shandysiswandi/signup/internal/pkg/jwt"
	"github.com/shandysiswandi/signup/internal/pkg/otp"
	"github.com/shandysiswandi/signup/internal/pkg/uid"
	"github.com/shandysiswandi/signup/internal/pkg/validator"
)

// CodeDelivery asks the notification side to send code to the account.
type CodeDelivery struct {
	EventID   string
	AccountID int64
	Username  string
	Email     string
	Code      string
	Purpose   string
	ExpiresAt time.Time
}

type repoMessaging interface {
	SendCode(ctx context.Context, msg CodeDelivery) error
}

type repoDB interface {
	CreateAccount(ctx context.Context, in entity.NewAccount) (*entity.Account, error)
	ExistsWithEmail(ctx context.Context, email string) (bool, error)
	ExistsWithUsername(ctx context.Context, username string) (bool, error)
	GetAccountByUsername(ctx context.Context, username string) (*entity.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*entity.Account, error)
	MarkConfirmed(ctx context.Context, id int64) (*entity.Account, error)
}

type otpManager interface {
	Issue(ctx context.Context, subjectID string) (otp.Issued, error)
	Validate(ctx context.Context, subjectID, submitted string) (bool, error)
	Regenerate(ctx context.Context, subjectID string) (otp.Issued, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	otp           otpManager
	otpLength     int
	validator     validator.Validator
	password      hash.Hash
	uid           uid.NumberID
	uuid          uid.StringID
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	OTP           otpManager
	Validator     validator.Validator
	Config        config.Config
	Password      hash.Hash
	UID           uid.NumberID
	UUID          uid.StringID
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	otpLength := dep.Config.GetInt("otp.length")
	if otpLength == 0 {
		otpLength = otp.DefaultLength
	}

	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		otp:           dep.OTP,
		otpLength:     otpLength,
		validator:     dep.Validator,
		password:      dep.Password,
		uid:           dep.UID,
		uuid:          dep.UUID,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("account.usecase").Start(ctx, name)
}

// dispatchCode hands the code to the notification side without making the
// caller wait. Delivery failures are logged only; the account and the code
// stay valid and the user can ask for a resend.
func (s *Usecase) dispatchCode(ctx context.Context, acc *entity.Account, issued otp.Issued, purpose string) {
	msg := CodeDelivery{
		EventID:   s.uuid.Generate(),
		AccountID: acc.ID,
		Username:  acc.Username,
		Email:     acc.Email,
		Code:      issued.Code,
		Purpose:   purpose,
		ExpiresAt: issued.ExpiresAt,
	}

	started := s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.SendCode(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "failed to send otp code", "account_id", msg.AccountID, "purpose", purpose, "error", err)
		}
		return nil
	})
	if !started {
		slog.WarnContext(ctx, "otp code delivery not scheduled", "account_id", msg.AccountID, "purpose", purpose)
	}
}
