package submit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/voiceagent/types"
)

func validForm() types.ContactForm {
	return types.ContactForm{Name: "Alex", Email: "alex@example.com", Message: "Let's talk", IsConfirmed: true}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(validForm()))

	err := Validate(types.ContactForm{Name: "Alex", Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrIncompleteForm)
	assert.ErrorContains(t, err, "missing message")
	assert.ErrorContains(t, err, "invalid email")
}

func TestLogSubmitter(t *testing.T) {
	assert.NoError(t, LogSubmitter{}.Submit(context.Background(), validForm()))
	assert.ErrorIs(t, LogSubmitter{}.Submit(context.Background(), types.ContactForm{}), ErrIncompleteForm)
}

func TestDelayedSubmitter(t *testing.T) {
	var got types.ContactForm
	s := DelayedSubmitter{
		Delay: 10 * time.Millisecond,
		Next: SubmitterFunc(func(_ context.Context, form types.ContactForm) error {
			got = form
			return nil
		}),
	}
	require.NoError(t, s.Submit(context.Background(), validForm()))
	assert.Equal(t, "Alex", got.Name)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, DelayedSubmitter{Delay: time.Hour}.Submit(ctx, validForm()), context.Canceled)

	boom := errors.New("boom")
	failing := DelayedSubmitter{Next: SubmitterFunc(func(context.Context, types.ContactForm) error { return boom })}
	assert.ErrorIs(t, failing.Submit(context.Background(), validForm()), boom)
}

func TestSQLiteSubmitter(t *testing.T) {
	s, err := NewSQLiteSubmitter(filepath.Join(t.TempDir(), "inbox", "inbox.db"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Submit(ctx, validForm()))
	assert.ErrorIs(t, s.Submit(ctx, types.ContactForm{Name: "x"}), ErrIncompleteForm)

	msgs, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Alex", msgs[0].Name)
	assert.Equal(t, "alex@example.com", msgs[0].Email)
	assert.Equal(t, "Let's talk", msgs[0].Body)
	assert.NotEmpty(t, msgs[0].ID)
}

func TestPostgresSubmitterRequiresDSN(t *testing.T) {
	_, err := NewPostgresSubmitter("")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg := &SQLSubmitter{postgres: true}
	assert.Equal(t, "VALUES ($1, $2)", pg.rebind("VALUES (?, ?)"))
	lite := &SQLSubmitter{}
	assert.Equal(t, "VALUES (?, ?)", lite.rebind("VALUES (?, ?)"))
}
