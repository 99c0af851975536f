package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shandysiswandi/signup/internal/account/entity"
	"github.com/shandysiswandi/signup/internal/pkg/clock"
	"github.com/shandysiswandi/signup/internal/pkg/config"
	"github.com/shandysiswandi/signup/internal/pkg/goerror"
	"github.com/shandysiswandi/signup/internal/pkg/goroutine"
	"github.com/shandysiswandi/signup/internal/pkg/hash"
	"github.com/shandysiswandi/signup/internal/pkg/instrument"
	"github.com/shandysiswandi/signup/internal/pkg/jwt"
	"github.com/shandysiswandi/signup/internal/pkg/otp"
	"github.com/shandysiswandi/signup/internal/pkg/uid"
	"github.com/shandysiswandi/signup/internal/pkg/validator"
)

var now = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

type fakeDB struct {
	mu       sync.Mutex
	accounts map[int64]*entity.Account

	errExists error
	errGet    error
	errCreate error
	errMark   error
}

func newFakeDB(accounts ...entity.Account) *fakeDB {
	db := &fakeDB{accounts: map[int64]*entity.Account{}}
	for _, a := range accounts {
		db.accounts[a.ID] = &a
	}
	return db
}

func (f *fakeDB) CreateAccount(_ context.Context, in entity.NewAccount) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.errCreate != nil {
		return nil, f.errCreate
	}
	acc := &entity.Account{
		ID:           in.ID,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.accounts[in.ID] = acc
	out := *acc
	return &out, nil
}

func (f *fakeDB) find(match func(*entity.Account) bool) *entity.Account {
	for _, a := range f.accounts {
		if match(a) {
			return a
		}
	}
	return nil
}

func (f *fakeDB) ExistsWithEmail(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.errExists != nil {
		return false, f.errExists
	}
	return f.find(func(a *entity.Account) bool { return a.Email == email }) != nil, nil
}

func (f *fakeDB) ExistsWithUsername(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.errExists != nil {
		return false, f.errExists
	}
	return f.find(func(a *entity.Account) bool { return a.Username == username }) != nil, nil
}

func (f *fakeDB) GetAccountByUsername(_ context.Context, username string) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.errGet != nil {
		return nil, f.errGet
	}
	a := f.find(func(a *entity.Account) bool { return a.Username == username })
	if a == nil {
		return nil, goerror.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (f *fakeDB) GetAccountByID(_ context.Context, id int64) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.errGet != nil {
		return nil, f.errGet
	}
	a, ok := f.accounts[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (f *fakeDB) MarkConfirmed(_ context.Context, id int64) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.errMark != nil {
		return nil, f.errMark
	}
	a, ok := f.accounts[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	a.IsMailConfirmed = true
	out := *a
	return &out, nil
}

type fakeMessaging struct {
	mu   sync.Mutex
	sent []CodeDelivery
	err  error
}

func (f *fakeMessaging) SendCode(_ context.Context, msg CodeDelivery) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, msg)
	return f.err
}

func (f *fakeMessaging) deliveries() []CodeDelivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CodeDelivery(nil), f.sent...)
}

type fakeOTP struct {
	mu          sync.Mutex
	code        string
	expiresAt   time.Time
	valid       bool
	err         error
	issued      []string
	regenerated []string
	validated   []string
}

func (f *fakeOTP) Issue(_ context.Context, subjectID string) (otp.Issued, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.issued = append(f.issued, subjectID)
	return otp.Issued{Code: f.code, ExpiresAt: f.expiresAt}, f.err
}

func (f *fakeOTP) Validate(_ context.Context, subjectID, submitted string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.validated = append(f.validated, subjectID+":"+submitted)
	return f.valid, f.err
}

func (f *fakeOTP) Regenerate(_ context.Context, subjectID string) (otp.Issued, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.regenerated = append(f.regenerated, subjectID)
	return otp.Issued{Code: f.code, ExpiresAt: f.expiresAt}, f.err
}

type sequenceID struct {
	mu   sync.Mutex
	next int64
}

func (s *sequenceID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

type fixture struct {
	uc        *Usecase
	db        *fakeDB
	msg       *fakeMessaging
	otp       *fakeOTP
	jwt       jwt.JWT
	goroutine *goroutine.Manager
}

func newFixture(t *testing.T, accounts ...entity.Account) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	cfg, err := config.NewViperFromBytes("yaml", []byte("otp:\n  length: 6\n"))
	require.NoError(t, err)

	clk := clock.NewManual(now)
	tokens, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("k", jwt.MinSecretLength)),
		Issuer:    "signup",
		Audiences: []string{"signup"},
		TTL:       time.Hour,
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	f := &fixture{
		db:        newFakeDB(accounts...),
		msg:       &fakeMessaging{},
		otp:       &fakeOTP{code: "482913", valid: true, expiresAt: now.Add(10 * time.Minute)},
		jwt:       tokens,
		goroutine: goroutine.NewManager(4),
	}
	f.uc = New(Dependency{
		RepoDB:        f.db,
		RepoMessaging: f.msg,
		OTP:           f.otp,
		Validator:     v,
		Config:        cfg,
		Password:      hash.NewBcrypt(bcrypt.MinCost, ""),
		UID:           &sequenceID{next: 1000},
		UUID:          uid.NewUUID(),
		JWT:           tokens,
		Instrument:    instrument.NewNoop(),
		Goroutine:     f.goroutine,
	})
	return f
}

// drain waits for dispatched deliveries.
func (f *fixture) drain(t *testing.T) {
	t.Helper()
	require.NoError(t, f.goroutine.Wait())
}
