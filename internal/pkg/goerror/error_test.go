package goerror

import (
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "conflict", err: NewBusiness("Email already taken", CodeConflict), want: http.StatusConflict},
		{name: "invalid credential", err: NewInvalidCredential("Invalid or expired code"), want: http.StatusUnauthorized},
		{name: "not found", err: NewBusiness("Account not found", CodeNotFound), want: http.StatusNotFound},
		{name: "validation", err: NewInvalidInput(errors.New("bad")), want: http.StatusUnprocessableEntity},
		{name: "malformed", err: NewInvalidFormat(), want: http.StatusBadRequest},
		{name: "throttled", err: NewTooManyRequest(), want: http.StatusTooManyRequests},
		{name: "internal", err: NewServer(errors.New("db down")), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gerr *Error
			require.ErrorAs(t, tt.err, &gerr)
			assert.Equal(t, tt.want, gerr.StatusCode())
		})
	}
}

func TestNewServerHidesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewServer(cause)

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "Internal server error", gerr.Msg())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, TypeServer, gerr.Type())
}

func TestNewInvalidInputFields(t *testing.T) {
	err := NewInvalidInput(nil, "otp", "otp must be numeric")

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, map[string]string{"otp": "otp must be numeric"}, gerr.Fields())

	odd := NewInvalidInput(nil, "otp")
	assert.True(t, IsCode(odd, CodeInvalidFormat))
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode(NewInvalidCredential("x"), CodeUnauthorized))
	assert.False(t, IsCode(NewInvalidCredential("x"), CodeNotFound))
	assert.False(t, IsCode(errors.New("plain"), CodeInternal))
}

func TestError_LogValue(t *testing.T) {
	err := NewServer(errors.New("db down"))

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	v := gerr.LogValue()

	require.Equal(t, slog.KindGroup, v.Kind())
	got := map[string]string{}
	for _, a := range v.Group() {
		got[a.Key] = a.Value.String()
	}
	assert.Equal(t, map[string]string{
		"type":  "ERROR_TYPE_SERVER",
		"code":  "ERROR_CODE_INTERNAL",
		"msg":   "Internal server error",
		"cause": "db down",
	}, got)
	assert.Equal(t, "db down", err.Error())
}

func TestCode_String(t *testing.T) {
	assert.Equal(t, "ERROR_CODE_CONFLICT", CodeConflict.String())
	assert.Equal(t, "ERROR_CODE_INTERNAL", Code(99).String())
	assert.Equal(t, "ERROR_TYPE_UNKNOWN", Type(99).String())
}
