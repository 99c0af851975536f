package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/signup/internal/pkg/messaging"
	"github.com/shandysiswandi/signup/internal/pkg/testkit"
	"github.com/shandysiswandi/signup/internal/shared/event"
)

const e2eConfig = `
app:
  name: Signup
  tz: UTC
  server:
    max_goroutine: 100
    cors: http://localhost:3000
instrument:
  enabled: false
  log_mask_fields: password,otp,token
hash:
  hmac:
    secret: e2e-otp-digest-secret
  password:
    algorithm: bcrypt
    bcrypt_cost: 4
jwt:
  secret: e2e-0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef
  issuer: signup
  audiences: signup-web
  ttl_minutes: 5
database:
  url: %s
  pool:
    max_conns: 4
redis:
  url: %s
mail:
  driver: log
  from: no-reply@signup.local
messaging:
  driver: memory
otp:
  store: postgres
  generator: numeric
  length: 6
  ttl_seconds: 600
  purge_interval_seconds: 60
modules:
  account:
    enabled: true
    otp_rate_limit: 100-M
  notification:
    enabled: true
    consumer_names: account_otp_issued_notification
    mail_retry_attempts: 2
    mail_retry_base_millis: 5
`

type successEnvelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type errorEnvelope struct {
	Message string            `json:"message"`
	Error   map[string]string `json:"error"`
}

// codeInbox captures the codes the account module publishes, keyed by
// username, through its own consumer group on the in-memory broker.
type codeInbox struct {
	mu     sync.Mutex
	ready  bool
	codes  map[string][]string
	notify chan struct{}
}

func (c *codeInbox) handle(_ context.Context, msg messaging.Message) error {
	var m event.OTPIssuedMessage
	if err := json.Unmarshal(msg.Body(), &m); err != nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if m.EventID == "" {
		c.ready = true
		return nil
	}
	c.codes[m.Username] = append(c.codes[m.Username], m.Code)
	select {
	case c.notify <- struct{}{}:
	default:
	}
	return nil
}

func (c *codeInbox) isReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

func (c *codeInbox) count(username string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.codes[username])
}

func (c *codeInbox) waitCode(t *testing.T, username string, n int) string {
	t.Helper()
	require.Eventually(t, func() bool { return c.count(username) >= n }, 5*time.Second, 10*time.Millisecond)

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codes[username][n-1]
}

type e2e struct {
	baseURL string
	client  *http.Client
	inbox   *codeInbox
}

func startApp(t *testing.T) *e2e {
	t.Helper()

	pool := testkit.Postgres(t, filepath.Join("..", "..", "migrations", "0001_init.sql"))
	rdb := testkit.Redis(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := fmt.Sprintf(e2eConfig, pool.Config().ConnString(), "redis://"+rdb.Options().Addr+"/0")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	t.Setenv("CONFIG_PATH", path)

	a := New()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	a.Serve(l)

	inbox := &codeInbox{codes: map[string][]string{}, notify: make(chan struct{}, 1)}
	go func() {
		_ = a.messaging.Consume(a.ctx, event.AccountOTPIssuedDestination, inbox.handle,
			messaging.WithGroup("e2e"), messaging.WithAutoAck(true))
	}()
	// The e2e queue exists once Consume runs; probe until it sees a message.
	require.Eventually(t, func() bool {
		_, _ = a.messaging.Publish(t.Context(), event.AccountOTPIssuedDestination, messaging.OutgoingMessage{Body: []byte(`{}`)})
		return inbox.isReady()
	}, 5*time.Second, 20*time.Millisecond)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Stop(ctx)
	})

	return &e2e{
		baseURL: "http://" + l.Addr().String(),
		client:  &http.Client{Timeout: 5 * time.Second},
		inbox:   inbox,
	}
}

func (e *e2e) doJSON(t *testing.T, method, path string, payload any, token string) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		require.NoError(t, json.NewEncoder(buf).Encode(payload))
		body = buf
	}

	req, err := http.NewRequestWithContext(t.Context(), method, e.baseURL+path, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, respBody
}

func decodeSuccess(t *testing.T, body []byte, out any) successEnvelope {
	t.Helper()

	var env successEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	if out != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

func decodeError(t *testing.T, body []byte) errorEnvelope {
	t.Helper()

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

func TestApp_SignupFlow(t *testing.T) {
	e := startApp(t)

	t.Run("Health", func(t *testing.T) {
		status, _ := e.doJSON(t, http.MethodGet, "/health", nil, "")
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("JoinVerifyProfile", func(t *testing.T) {
		join := map[string]string{"username": "ayu_w", "email": "Ayu@Example.com", "password": "correct horse"}
		status, body := e.doJSON(t, http.MethodPost, "/api/v1/users/join", join, "")
		require.Equal(t, http.StatusCreated, status, string(body))

		var created struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		}
		decodeSuccess(t, body, &created)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "ayu@example.com", created.Email)

		status, body = e.doJSON(t, http.MethodPost, "/api/v1/users/join", join, "")
		assert.Equal(t, http.StatusConflict, status, string(body))

		code := e.inbox.waitCode(t, "ayu_w", 1)

		status, body = e.doJSON(t, http.MethodPost, "/api/v1/users/otp", map[string]string{"username": "ayu_w", "otp": wrongCode(code)}, "")
		assert.Equal(t, http.StatusUnauthorized, status, string(body))

		status, body = e.doJSON(t, http.MethodPost, "/api/v1/users/otp", map[string]string{"username": "ayu_w", "otp": code}, "")
		require.Equal(t, http.StatusOK, status, string(body))
		var verified struct {
			ID              string `json:"id"`
			IsMailConfirmed bool   `json:"is_mail_confirmed"`
			Token           string `json:"token"`
		}
		decodeSuccess(t, body, &verified)
		assert.True(t, verified.IsMailConfirmed)
		assert.Equal(t, created.ID, verified.ID)
		require.NotEmpty(t, verified.Token)

		status, body = e.doJSON(t, http.MethodPost, "/api/v1/users/otp", map[string]string{"username": "ayu_w", "otp": code}, "")
		assert.Equal(t, http.StatusUnauthorized, status, "a code validates once: %s", body)

		status, body = e.doJSON(t, http.MethodGet, "/api/v1/users/me", nil, verified.Token)
		require.Equal(t, http.StatusOK, status, string(body))
		var me struct {
			Username        string `json:"username"`
			IsMailConfirmed bool   `json:"is_mail_confirmed"`
		}
		decodeSuccess(t, body, &me)
		assert.Equal(t, "ayu_w", me.Username)
		assert.True(t, me.IsMailConfirmed)

		status, body = e.doJSON(t, http.MethodPut, "/api/v1/users/otp", map[string]string{"username": "ayu_w"}, "")
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "Email already confirmed", decodeError(t, body).Message)
	})

	t.Run("ResendInvalidatesPreviousCode", func(t *testing.T) {
		join := map[string]string{"username": "budi", "email": "budi@example.com", "password": "another secret"}
		status, body := e.doJSON(t, http.MethodPost, "/api/v1/users/join", join, "")
		require.Equal(t, http.StatusCreated, status, string(body))
		first := e.inbox.waitCode(t, "budi", 1)

		status, body = e.doJSON(t, http.MethodPut, "/api/v1/users/otp", map[string]string{"username": "budi"}, "")
		require.Equal(t, http.StatusOK, status, string(body))
		second := e.inbox.waitCode(t, "budi", 2)

		if first != second {
			status, _ = e.doJSON(t, http.MethodPost, "/api/v1/users/otp", map[string]string{"username": "budi", "otp": first}, "")
			assert.Equal(t, http.StatusUnauthorized, status)
		}

		status, body = e.doJSON(t, http.MethodPost, "/api/v1/users/otp", map[string]string{"username": "budi", "otp": second}, "")
		assert.Equal(t, http.StatusOK, status, string(body))
	})

	t.Run("ValidationAndUnknownAccount", func(t *testing.T) {
		status, body := e.doJSON(t, http.MethodPost, "/api/v1/users/join", map[string]string{"username": "x", "email": "nope", "password": "short"}, "")
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.NotEmpty(t, decodeError(t, body).Error)

		status, _ = e.doJSON(t, http.MethodPut, "/api/v1/users/otp", map[string]string{"username": "ghost"}, "")
		assert.Equal(t, http.StatusNotFound, status)

		status, _ = e.doJSON(t, http.MethodPost, "/api/v1/users/otp", map[string]string{"username": "ghost", "otp": "123456"}, "")
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}
