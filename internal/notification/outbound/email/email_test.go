package email

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/signup/internal/notification/entity"
	"github.com/shandysiswandi/signup/internal/pkg/instrument"
	"github.com/shandysiswandi/signup/internal/pkg/mail"
)

type recordingMail struct {
	got []mail.Message
	err error
}

func (r *recordingMail) Send(_ context.Context, msg mail.Message) error {
	r.got = append(r.got, msg)
	return r.err
}

func (*recordingMail) Close() error { return nil }

func TestMail_Send(t *testing.T) {
	t.Run("MapsEmail", func(t *testing.T) {
		// Arrange
		rec := &recordingMail{}
		m := New(rec, instrument.NewNoop())

		// Act
		err := m.Send(t.Context(), entity.Email{To: "ayu@example.com", Subject: "code", TextBody: "482913", HTMLBody: "<b>482913</b>"})

		// Assert
		require.NoError(t, err)
		require.Len(t, rec.got, 1)
		assert.Equal(t, mail.Message{
			To:       []string{"ayu@example.com"},
			Subject:  "code",
			TextBody: "482913",
			HTMLBody: "<b>482913</b>",
		}, rec.got[0])
	})

	t.Run("TransportError", func(t *testing.T) {
		errDial := errors.New("dial tcp: connection refused")
		m := New(&recordingMail{err: errDial}, instrument.NewNoop())

		err := m.Send(t.Context(), entity.Email{To: "ayu@example.com"})

		assert.ErrorIs(t, err, errDial)
	})
}
