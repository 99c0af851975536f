package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shandysiswandi/signup/internal/account/inbound"
	"github.com/shandysiswandi/signup/internal/account/outbound/db"
	"github.com/shandysiswandi/signup/internal/account/outbound/mq"
	"github.com/shandysiswandi/signup/internal/account/usecase"
	"github.com/shandysiswandi/signup/internal/pkg/clock"
	"github.com/shandysiswandi/signup/internal/pkg/config"
	"github.com/shandysiswandi/signup/internal/pkg/goroutine"
	"github.com/shandysiswandi/signup/internal/pkg/hash"
	"github.com/shandysiswandi/signup/internal/pkg/instrument"
	"github.com/shandysiswandi/signup/internal/pkg/jwt"
	"github.com/shandysiswandi/signup/internal/pkg/messaging"
	"github.com/shandysiswandi/signup/internal/pkg/otp"
	"github.com/shandysiswandi/signup/internal/pkg/router"
	"github.com/shandysiswandi/signup/internal/pkg/uid"
	"github.com/shandysiswandi/signup/internal/pkg/validator"
)

const defaultPurgeInterval = 5 * time.Minute

var (
	ErrUnknownOTPStore     = errors.New("account: unknown otp store")
	ErrUnknownOTPGenerator = errors.New("account: unknown otp generator")
)

type Dependency struct {
	// Ctx bounds the otp janitor. It does not run when Ctx is nil.
	Ctx        context.Context
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  redis.UniversalClient      `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Password   hash.Hash                  `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	otpManager, err := newOTPManager(dep)
	if err != nil {
		return err
	}

	var otpLimiter router.Middleware
	if rate := strings.TrimSpace(dep.Config.GetString("modules.account.otp_rate_limit")); rate != "" {
		otpLimiter, err = router.NewRateLimiter(rate)
		if err != nil {
			return fmt.Errorf("account: otp rate limit %q: %w", rate, err)
		}
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:        db.NewDB(dep.DBConn, dep.Instrument),
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		OTP:           otpManager,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Password:      dep.Password,
		UID:           dep.UID,
		UUID:          dep.UUID,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, otpLimiter)

	if dep.Ctx != nil {
		interval := dep.Config.GetSecond("otp.purge_interval_seconds")
		if interval <= 0 {
			interval = defaultPurgeInterval
		}
		if !dep.Goroutine.Go(dep.Ctx, func(ctx context.Context) error {
			return runJanitor(ctx, otpManager, interval)
		}) {
			slog.Warn("otp janitor not started")
		}
	}

	return nil
}

func newOTPManager(dep Dependency) (*otp.Manager, error) {
	var store otp.Store
	switch name := strings.ToLower(strings.TrimSpace(dep.Config.GetString("otp.store"))); name {
	case "", "postgres":
		store = db.NewOTPStore(dep.DBConn, dep.Instrument)
	case "redis":
		store = otp.NewRedisStore(dep.CacheConn)
	case "memory":
		store = otp.NewMemoryStore()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOTPStore, name)
	}

	length := dep.Config.GetInt("otp.length")
	if length == 0 {
		length = otp.DefaultLength
	}

	var (
		gen otp.Generator
		err error
	)
	switch name := strings.ToLower(strings.TrimSpace(dep.Config.GetString("otp.generator"))); name {
	case "", "numeric":
		gen, err = otp.NewNumericGenerator(length)
	case "hotp":
		gen, err = otp.NewHOTPGenerator(length)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOTPGenerator, name)
	}
	if err != nil {
		return nil, err
	}

	return otp.NewManager(otp.Config{
		TTL:        dep.Config.GetSecond("otp.ttl_seconds"),
		Store:      store,
		Generator:  gen,
		Digest:     dep.HMAC,
		Clock:      dep.Clock,
		ID:         dep.UUID,
		Instrument: dep.Instrument,
	})
}
