package otp_test

import (
	"testing"

	"github.com/shandysiswandi/signup/internal/pkg/otp"
	"github.com/shandysiswandi/signup/internal/pkg/otp/otptest"
	"github.com/shandysiswandi/signup/internal/pkg/testkit"
)

func TestMemoryStore(t *testing.T) {
	newStore := func(*testing.T) otp.Store { return otp.NewMemoryStore() }

	otptest.RunStoreSuite(t, newStore)
	otptest.RunPurgeSuite(t, newStore)
}

func TestRedisStore(t *testing.T) {
	client := testkit.Redis(t)

	otptest.RunStoreSuite(t, func(t *testing.T) otp.Store {
		t.Helper()
		if err := client.FlushDB(t.Context()).Err(); err != nil {
			t.Fatalf("flush redis: %v", err)
		}
		return otp.NewRedisStore(client)
	})
}
