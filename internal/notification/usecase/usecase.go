package usecase

import (
	"bytes"
	"context"
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/signup/internal/notification/entity"
	"github.com/shandysiswandi/signup/internal/pkg/clock"
	"github.com/shandysiswandi/signup/internal/pkg/config"
	"github.com/shandysiswandi/signup/internal/pkg/idempotency"
	"github.com/shandysiswandi/signup/internal/pkg/instrument"
	"github.com/shandysiswandi/signup/internal/pkg/validator"
)

const (
	defaultMailRetryAttempts = 3
	defaultMailRetryBase     = 200 * time.Millisecond
	defaultAppName           = "Signup"
)

//go:embed templates
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.New("").Option("missingkey=zero").ParseFS(templateFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.New("").Option("missingkey=zero").ParseFS(templateFS, "templates/*.txt"))
)

type repoMail interface {
	Send(ctx context.Context, email entity.Email) error
}

type idempotent interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...idempotency.Option) error
}

type Usecase struct {
	repoMail       repoMail
	idemp          idempotent
	validator      validator.Validator
	clock          clock.Clocker
	ins            instrument.Instrumentation
	appName        string
	retryAttempts  uint64
	retryBaseDelay time.Duration
}

type Dependency struct {
	RepoMail    repoMail
	Idempotency idempotent
	Validator   validator.Validator
	Config      config.Config
	Clock       clock.Clocker
	Instrument  instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	attempts := dep.Config.GetUint64("modules.notification.mail_retry_attempts")
	if attempts == 0 {
		attempts = defaultMailRetryAttempts
	}

	base := time.Duration(dep.Config.GetInt64("modules.notification.mail_retry_base_millis")) * time.Millisecond
	if base <= 0 {
		base = defaultMailRetryBase
	}

	appName := dep.Config.GetString("app.name")
	if appName == "" {
		appName = defaultAppName
	}

	return &Usecase{
		repoMail:       dep.RepoMail,
		idemp:          dep.Idempotency,
		validator:      dep.Validator,
		clock:          dep.Clock,
		ins:            dep.Instrument,
		appName:        appName,
		retryAttempts:  attempts,
		retryBaseDelay: base,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

func render(name string, data any) (text, html string, err error) {
	var tb, hb bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&tb, name+".txt", data); err != nil {
		return "", "", err
	}
	if err := htmlTemplates.ExecuteTemplate(&hb, name+".html", data); err != nil {
		return "", "", err
	}

	return tb.String(), hb.String(), nil
}
