package app

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthOf(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		db, cache  pinger
		want       healthResponse
		wantStatus int
	}{
		{
			name:       "AllUp",
			db:         up,
			cache:      up,
			want:       healthResponse{Status: "ok", Database: "up", Redis: "up"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "DatabaseDown",
			db:         down,
			cache:      up,
			want:       healthResponse{Status: "degraded", Database: "down", Redis: "up"},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "RedisDown",
			db:         up,
			cache:      down,
			want:       healthResponse{Status: "degraded", Database: "up", Redis: "down"},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := healthOf(t.Context(), tt.db, tt.cache)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantStatus, got.StatusCode())
		})
	}
}
